package creator

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pytemplate/pytemplate/internal/project"
)

// Flag values handed to templates.
const (
	Yes = "yes"
	No  = "no"
)

func yesNo(b bool) string {
	if b {
		return Yes
	}
	return No
}

// BuildContext flattens cfg into the variables a scaffold is expanded
// with. Booleans become "yes" or "no" and lists are comma-joined. Keys
// that only make sense for one project type are added under that type's
// names.
func BuildContext(cfg *project.Config, now time.Time) map[string]string {
	p := cfg.Project
	d := cfg.Development

	vars := map[string]string{
		"project_name":        p.Name,
		"package_name":        PackageName(p.Name),
		"project_slug":        ProjectSlug(p.Name),
		"project_description": p.Description,
		"project_type":        string(p.Type),
		"python_version":      p.PythonVersion,
		"python_tag":          pythonTag(p.PythonVersion),
		"author":              authorName(p.Author),
		"email":               p.Email,
		"license":             p.License,
		"version":             p.Version,
		"year":                strconv.Itoa(now.Year()),

		"repo_name":         cfg.VCS.RepoName,
		"publish_to_remote": yesNo(cfg.VCS.PublishToRemote),
		"remote_username":   cfg.VCS.RemoteUsername,
		"repo_private":      yesNo(cfg.VCS.RepoPrivate),

		"use_devcontainer": yesNo(cfg.DevContainer.Enabled),

		"testing_framework":  d.TestingFramework,
		"docs_generator":     d.DocsGenerator,
		"use_ruff":           yesNo(d.UseRuff),
		"use_mypy":           yesNo(d.UseMypy),
		"use_pre_commit":     yesNo(d.UsePreCommit),
		"cli_interface":      d.CLIInterface,
		"coverage_reporting": yesNo(d.CoverageReporting),
		"use_tests":          yesNo(d.TestingFramework != project.OptionNone),
		"use_mkdocs":         yesNo(d.DocsGenerator == project.DocsMkdocs),
		"use_sphinx":         yesNo(d.DocsGenerator == project.DocsSphinx),
		"use_cli":            yesNo(d.CLIInterface != project.OptionNone),

		"ai_assistants": strings.Join(cfg.AIAssistants, ","),
	}

	switch p.Type {
	case project.TypeLib:
		vars["library_name"] = p.Name
		vars["use_docker"] = No
	case project.TypeService:
		vars["service_name"] = p.Name
		addContainer(vars, cfg)
		vars["primary_port"] = strconv.Itoa(firstPort(cfg.ServicePorts))
	case project.TypeWorkspace:
		vars["workspace_name"] = p.Name
		addContainer(vars, cfg)
		vars["gateway_port"] = strconv.Itoa(firstPort(cfg.ServicePorts))
	}
	return vars
}

func addContainer(vars map[string]string, cfg *project.Config) {
	vars["use_docker"] = yesNo(cfg.Container.EnableImage)
	vars["use_compose"] = yesNo(cfg.Container.EnableCompose)
	vars["base_image"] = BaseImage(cfg)

	ports := make([]string, len(cfg.ServicePorts))
	for i, port := range cfg.ServicePorts {
		ports[i] = strconv.Itoa(port)
	}
	vars["service_ports"] = strings.Join(ports, ",")
}

// PackageName returns the importable Python package name for a project.
func PackageName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// ProjectSlug returns the distribution name for a project.
func ProjectSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// BaseImage returns the container base image: the override when set,
// otherwise the slim image of the configured Python version.
func BaseImage(cfg *project.Config) string {
	if cfg.Container.BaseImageOverride != "" {
		return cfg.Container.BaseImageOverride
	}
	return "python:" + cfg.Project.PythonVersion + "-slim"
}

func firstPort(ports []int) int {
	if len(ports) == 0 {
		return project.DefaultPort
	}
	return ports[0]
}

// pythonTag turns "3.12" into "py312".
func pythonTag(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return "py" + strings.ReplaceAll(version, ".", "")
	}
	return "py" + parts[0] + parts[1]
}

func authorName(author string) string {
	if author != "" {
		return author
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}
