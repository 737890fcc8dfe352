package linker

import (
	"bytes"
	"fmt"
	"os"

	"github.com/adrg/frontmatter"
	"go.yaml.in/yaml/v3"
)

var yamlFrontmatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Rules is a parsed coding-rules document.
type Rules struct {
	// Meta is the decoded front matter, nil when the document has none.
	Meta map[string]any
	Raw  []byte
	Body []byte
}

// LoadRules reads the rules document at path and splits off any YAML front
// matter.
func LoadRules(path string) (*Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules document: %w", err)
	}
	return ParseRules(raw)
}

// ParseRules splits raw into front matter and body.
func ParseRules(raw []byte) (*Rules, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta, yamlFrontmatter)
	if err != nil {
		return nil, fmt.Errorf("parsing rules front matter: %w", err)
	}
	return &Rules{Meta: meta, Raw: raw, Body: bytes.TrimLeft(body, "\r\n")}, nil
}

// Content returns what an assistant receives: the document verbatim when
// keepFrontmatter is set, the body otherwise.
func (r *Rules) Content(keepFrontmatter bool) []byte {
	if keepFrontmatter {
		return r.Raw
	}
	return r.Body
}
