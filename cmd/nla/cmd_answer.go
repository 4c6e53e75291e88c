package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/pipeline"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/projectconfig"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/records"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/spinner"
)

type answerOptions struct {
	questions string
	output    string
	logFile   string
	basePath  string
	model     string
	section   string
	interval  int
	engine    string
	timeout   time.Duration
	verbose   bool
}

func newAnswerCommand() *cobra.Command {
	opts := &answerOptions{}

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Answer every question in the questions file",
		Long: `Answer every question in the questions file, in order.

Settings come from .nla.yaml (found by walking up from the base path or the
current directory), .env files, and the flags below, in increasing priority.
The API key is read from OPENROUTER_API_KEY unless endpoint.api_key_env says
otherwise. A missing key stops the command before any question is sent.

Failed requests never stop the run: the question is kept with the answer
"Null" and the failure is written to the activity log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return answerCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.questions, "questions", "", "Questions YAML file (default: paths.questions)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Answers file (default: <paths.answers>/<model>.yaml)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Activity log file (default: <paths.logs>/answer.txt)")
	cmd.Flags().StringVar(&opts.basePath, "base-path", "", "Project base directory (overrides paths.base and NLA_BASE_PATH)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Default model for questions without one")
	cmd.Flags().StringVar(&opts.section, "section", "", "Section label for the activity log")
	cmd.Flags().IntVar(&opts.interval, "interval", 0, "Save answers after this many questions")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "Completion engine: openrouter, echo")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (e.g. 90s)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output with per-question status")

	return cmd
}

func answerCommandE(cmd *cobra.Command, opts *answerOptions) error {
	cfg, err := loadAnswerConfig(cmd, opts)
	if err != nil {
		return err
	}

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	model := cfg.Defaults.Model
	questionsPath := firstNonEmpty(opts.questions, cfg.QuestionsPath())
	outputPath := firstNonEmpty(opts.output, cfg.AnswersPath(model))
	logPath := firstNonEmpty(opts.logFile, cfg.LogPath())

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var recorder pipeline.Recorder = activity.NopLogger{}
	logger, err := activity.NewFileLogger(logPath)
	if err != nil {
		slog.Warn("Activity log disabled", "path", logPath, "error", err)
	} else {
		defer logger.Close() //nolint:errcheck
		recorder = logger
	}

	fmt.Fprintf(out, "Starting %s Question Processing\n\n", cfg.Defaults.Section) //nolint:errcheck

	inputs, err := records.Load(questionsPath)
	if err != nil {
		fmt.Fprintf(errOut, "Could not read questions: %v\n", err) //nolint:errcheck
	}
	slog.Debug("Loaded questions", "path", questionsPath, "count", len(inputs))

	runner := pipeline.NewRunner(completer, recorder, records.FileStore{Path: outputPath},
		pipeline.WithDefaultModel(model),
		pipeline.WithSection(cfg.Defaults.Section),
		pipeline.WithAutoSaveInterval(cfg.Defaults.AutoSaveInterval),
	)

	verbose := opts.verbose || (cfg.Defaults.Verbose != nil && *cfg.Defaults.Verbose)
	reporter := newProgressReporter(out, errOut, outputPath, verbose, spinner.Enabled(out))
	runner.OnProgress(reporter.handle)

	res := runner.Run(cmd.Context(), inputs)
	reporter.stopSpinner()

	printAnswerSummary(cmd, res, outputPath)
	return nil
}

// loadAnswerConfig merges .nla.yaml with flags. Only flags the user set
// override file values.
func loadAnswerConfig(cmd *cobra.Command, opts *answerOptions) (*projectconfig.ProjectConfig, error) {
	startDir := firstNonEmpty(opts.basePath, ".")
	cfg, err := projectconfig.Load(startDir)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if opts.basePath != "" {
		abs, err := filepath.Abs(opts.basePath)
		if err != nil {
			return nil, fmt.Errorf("resolving base path %q: %w", opts.basePath, err)
		}
		cfg.Paths.Base = abs
	}
	if opts.model != "" {
		cfg.Defaults.Model = opts.model
	}
	if opts.section != "" {
		cfg.Defaults.Section = opts.section
	}
	if opts.engine != "" {
		cfg.Defaults.Engine = opts.engine
	}
	if flags.Changed("interval") {
		cfg.Defaults.AutoSaveInterval = opts.interval
	}
	if flags.Changed("timeout") {
		cfg.Defaults.Timeout = int(opts.timeout.Round(time.Second) / time.Second)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newCompleter builds the engine named in the configuration. The API key
// check is the only fatal startup condition.
func newCompleter(cfg *projectconfig.ProjectConfig) (pipeline.Completer, error) {
	switch cfg.Defaults.Engine {
	case projectconfig.EngineEcho:
		return completion.NewEchoClient(), nil
	default:
		key, err := cfg.RequireAPIKey()
		if err != nil {
			return nil, err
		}
		return completion.NewOpenRouterClient(completion.Config{
			APIKey:   key,
			BaseURL:  cfg.Endpoint.BaseURL,
			Timeout:  cfg.Timeout(),
			SiteURL:  cfg.Endpoint.SiteURL,
			SiteName: cfg.Endpoint.SiteName,
		}), nil
	}
}

func printAnswerSummary(cmd *cobra.Command, res *pipeline.Result, outputPath string) {
	out := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	fmt.Fprintf(out, "\nAll questions processed. Responses saved to:\n%s\n", outputPath) //nolint:errcheck

	p.Fprintf(out, "Answered: %d  Flagged: %d  Failed: %d  (of %d)\n", res.Answered, res.Flagged, res.Failed, len(res.Records)) //nolint:errcheck
	if res.SaveErrors > 0 {
		p.Fprintf(cmd.ErrOrStderr(), "Warning: %d save(s) failed; the answers file may be behind\n", res.SaveErrors) //nolint:errcheck
	}
	fmt.Fprintln(out, "Done.") //nolint:errcheck
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
