// Package wizard collects project settings interactively for nla init.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/projectconfig"
)

// ProjectSpec holds all fields collected during the interactive wizard.
type ProjectSpec struct {
	Engine           string
	Model            string
	Section          string
	AutoSaveInterval int
	APIKeyEnv        string
}

const envExampleTemplate = `# Copy to .env and fill in. Variables already set in the environment win.
{{ .APIKeyEnv }}=
{{- if eq .Engine "echo" }}
# The echo engine answers offline and does not use the key.
{{- end }}
# {{ .BasePathEnv }}=/path/to/project
`

// RunConfigWizard runs an interactive huh form seeded from defaults.
func RunConfigWizard(in io.Reader, out io.Writer, defaults *projectconfig.ProjectConfig) (*ProjectSpec, error) {
	var (
		engine      = defaults.Defaults.Engine
		model       = defaults.Defaults.Model
		section     = defaults.Defaults.Section
		intervalRaw = strconv.Itoa(defaults.Defaults.AutoSaveInterval)
		apiKeyEnv   = defaults.Endpoint.APIKeyEnv
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Engine").
				Description("openrouter calls the API, echo answers offline").
				Options(
					huh.NewOption(projectconfig.EngineOpenRouter, projectconfig.EngineOpenRouter),
					huh.NewOption(projectconfig.EngineEcho, projectconfig.EngineEcho),
				).
				Value(&engine),
			huh.NewInput().
				Title("Default model").
				Description("Used for questions that do not name a model").
				Placeholder(projectconfig.DefaultModel).
				Value(&model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Section").
				Description("Label written to the activity log").
				Value(&section),
			huh.NewInput().
				Title("Auto-save interval").
				Description("Save answers after this many questions").
				Value(&intervalRaw).
				Validate(func(s string) error {
					_, err := parseInterval(s)
					return err
				}),
			huh.NewInput().
				Title("API key variable").
				Description("Environment variable holding the OpenRouter key").
				Value(&apiKeyEnv),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	interval, err := parseInterval(intervalRaw)
	if err != nil {
		return nil, err
	}
	return &ProjectSpec{
		Engine:           engine,
		Model:            strings.TrimSpace(model),
		Section:          strings.TrimSpace(section),
		AutoSaveInterval: interval,
		APIKeyEnv:        strings.TrimSpace(apiKeyEnv),
	}, nil
}

// Apply copies the non-empty answers onto cfg.
func (s *ProjectSpec) Apply(cfg *projectconfig.ProjectConfig) {
	if s.Engine != "" {
		cfg.Defaults.Engine = s.Engine
	}
	if s.Model != "" {
		cfg.Defaults.Model = s.Model
	}
	if s.Section != "" {
		cfg.Defaults.Section = s.Section
	}
	if s.AutoSaveInterval > 0 {
		cfg.Defaults.AutoSaveInterval = s.AutoSaveInterval
	}
	if s.APIKeyEnv != "" {
		cfg.Endpoint.APIKeyEnv = s.APIKeyEnv
	}
}

// GenerateEnvExample renders a .env.example for the spec.
func GenerateEnvExample(spec *ProjectSpec) (string, error) {
	tmpl, err := template.New("envexample").Parse(envExampleTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		*ProjectSpec
		BasePathEnv string
	}{spec, projectconfig.EnvBasePath}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func parseInterval(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("auto-save interval must be a whole number of at least 1")
	}
	return n, nil
}
