package creator

import (
	"github.com/AlecAivazis/survey/v2"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// SurveyConfirmer prompts on the terminal. The default answer is no.
type SurveyConfirmer struct {
	Opts []survey.AskOpt
}

// Confirm implements Confirmer.
func (s SurveyConfirmer) Confirm(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok, s.Opts...); err != nil {
		return false, err
	}
	return ok, nil
}

type denyConfirmer struct{}

func (denyConfirmer) Confirm(string) (bool, error) { return false, nil }
