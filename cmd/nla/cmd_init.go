package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/projectconfig"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/wizard"
)

const sampleQuestions = `# One entry per question. "model" is optional and overrides defaults.model.
- question: What is the singular value decomposition of a matrix?
- question: Why is Gaussian elimination with partial pivoting preferred over no pivoting?
- question: How does the condition number of A affect the accuracy of solving Ax = b?
  model: openai/gpt-4o
`

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new nla project",
		Long: `Initialize a new nla project.

Creates .nla.yaml, a sample questions file under data/questions/, the
data/answers/ and logs/ directories, and a .env.example listing the API key
variable. Existing files are left untouched.

Use --interactive to choose the engine, model, and auto-save interval in a
guided form.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided configuration wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := projectconfig.New()
	spec := &wizard.ProjectSpec{
		Engine:           cfg.Defaults.Engine,
		Model:            cfg.Defaults.Model,
		Section:          cfg.Defaults.Section,
		AutoSaveInterval: cfg.Defaults.AutoSaveInterval,
		APIKeyEnv:        cfg.Endpoint.APIKeyEnv,
	}
	if interactive {
		answers, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
		spec = answers
		spec.Apply(cfg)
	}

	cfgData, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", projectconfig.FileName, err)
	}
	envExample, err := wizard.GenerateEnvExample(spec)
	if err != nil {
		return fmt.Errorf("failed to generate .env.example: %w", err)
	}

	for _, sub := range []string{cfg.Paths.Answers, cfg.Paths.Logs} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, projectconfig.FileName), string(cfgData)},
		{filepath.Join(dir, filepath.FromSlash(cfg.Paths.Questions)), sampleQuestions},
		{filepath.Join(dir, ".env.example"), envExample},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Initialized nla project:") //nolint:errcheck
	for _, f := range files {
		created, err := writeIfMissing(f.path, f.content)
		if err != nil {
			return err
		}
		status := "created"
		if !created {
			status = "exists"
		}
		fmt.Fprintf(out, "  %-8s %s\n", status, f.path) //nolint:errcheck
	}
	return nil
}

// writeIfMissing writes content to path unless a file is already there.
func writeIfMissing(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
