package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/activity"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/completion"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/records"
	"github.com/DilaksanThirugnanaselvam/Investigate-LLMs-and-Develop-a-Model-for-Numerical-Linear-Algebra/internal/tokens"
)

// defaultMaxWords matches the word limit in completion.SystemPrompt.
const defaultMaxWords = 100

type checkOptions struct {
	questions string
	strict    bool
	list      bool
	maxWords  int
}

// checkReport summarizes one answers file.
type checkReport struct {
	total      int
	answered   int
	flagged    int
	unanswered int
	overLimit  int
	tokens     int
	canonical  bool
	problems   []string
	recs       []records.OutputRecord
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <answers.yaml>",
		Short: "Check a saved answers file",
		Long: `Check a saved answers file.

Reads the file, counts answered, flagged, and unanswered ("Null") questions,
and verifies the file is exactly what nla answer would write for the same
records. With --questions, also verifies that the answers line up with the
questions file one to one.

Answers longer than --max-words words are counted, and the answers' total
size is estimated in tokens.

Exits with status 1 when problems are found. --strict also treats flagged,
unanswered, and over-long answers as problems.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCommandE(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.questions, "questions", "", "Questions file the answers must line up with")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on flagged or unanswered questions")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List every question with its status")
	cmd.Flags().IntVar(&opts.maxWords, "max-words", defaultMaxWords, "Word limit for a single answer")

	return cmd
}

func checkCommandE(cmd *cobra.Command, path string, opts *checkOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read answers file: %w", err)
	}

	report, err := checkAnswers(data, opts.maxWords)
	if err != nil {
		return &CheckFailureError{Message: fmt.Sprintf("%s: %v", path, err)}
	}

	if opts.questions != "" {
		inputs, err := records.Load(opts.questions)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		report.problems = append(report.problems, alignmentProblems(inputs, report.recs)...)
	}
	if opts.strict {
		if report.flagged > 0 {
			report.problems = append(report.problems, fmt.Sprintf("%d flagged question(s)", report.flagged))
		}
		if report.unanswered > 0 {
			report.problems = append(report.problems, fmt.Sprintf("%d unanswered question(s)", report.unanswered))
		}
		if report.overLimit > 0 {
			report.problems = append(report.problems, fmt.Sprintf("%d answer(s) over %d words", report.overLimit, opts.maxWords))
		}
	}

	out := cmd.OutOrStdout()
	printCheckReport(out, path, report)
	if opts.list {
		printRecordList(out, report.recs, opts.maxWords)
	}

	if len(report.problems) > 0 {
		return &CheckFailureError{Message: fmt.Sprintf("%s: %d problem(s) found", path, len(report.problems))}
	}
	return nil
}

// checkAnswers decodes data, compares it with its own re-encoding, and
// sizes the answers against maxWords.
func checkAnswers(data []byte, maxWords int) (*checkReport, error) {
	recs, err := records.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := records.Encode(&buf, recs); err != nil {
		return nil, err
	}

	report := &checkReport{
		total:     len(recs),
		canonical: bytes.Equal(buf.Bytes(), data),
		recs:      recs,
	}
	if !report.canonical {
		report.problems = append(report.problems, "file is not in canonical form")
	}
	for _, r := range recs {
		switch {
		case r.Flagged:
			report.flagged++
		case r.Answer == completion.NoAnswer:
			report.unanswered++
		default:
			report.answered++
		}
		if r.Answer == completion.NoAnswer {
			continue
		}
		report.tokens += tokens.Estimate(r.Answer)
		if maxWords > 0 && tokens.Words(r.Answer) > maxWords {
			report.overLimit++
		}
	}
	return report, nil
}

// alignmentProblems reports answers that do not line up with inputs by position.
func alignmentProblems(inputs []records.InputRecord, recs []records.OutputRecord) []string {
	var problems []string
	if len(inputs) != len(recs) {
		problems = append(problems, fmt.Sprintf("%d question(s) but %d answer(s)", len(inputs), len(recs)))
	}
	for i := range min(len(inputs), len(recs)) {
		if activity.Excerpt(inputs[i].Question, 0) != activity.Excerpt(recs[i].Question, 0) {
			problems = append(problems, fmt.Sprintf("entry %d answers a different question", i+1))
		}
	}
	return problems
}

func printCheckReport(w io.Writer, path string, report *checkReport) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s\n", path) //nolint:errcheck

	rows := [][2]string{
		{"Questions", p.Sprintf("%d", report.total)},
		{"Answered", p.Sprintf("%d", report.answered)},
		{"Flagged", p.Sprintf("%d", report.flagged)},
		{"Unanswered", p.Sprintf("%d", report.unanswered)},
		{"Over limit", p.Sprintf("%d", report.overLimit)},
		{"Est. tokens", p.Sprintf("%d", report.tokens)},
		{"Canonical", yesNo(report.canonical)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n", padRight(row[0], 12), row[1]) //nolint:errcheck
	}

	if len(report.problems) == 0 {
		fmt.Fprintln(w, "\n✅ No problems found") //nolint:errcheck
		return
	}
	fmt.Fprintln(w) //nolint:errcheck
	for _, prob := range report.problems {
		fmt.Fprintf(w, "❌ %s\n", prob) //nolint:errcheck
	}
}

func printRecordList(w io.Writer, recs []records.OutputRecord, maxWords int) {
	const questionWidth = 60
	fmt.Fprintln(w) //nolint:errcheck
	for i, r := range recs {
		status := "answered"
		switch {
		case r.Flagged:
			status = "flagged"
		case r.Answer == completion.NoAnswer:
			status = "null"
		case maxWords > 0 && tokens.Words(r.Answer) > maxWords:
			status = "long"
		}
		q := runewidth.Truncate(activity.Excerpt(r.Question, 0), questionWidth, "...")
		fmt.Fprintf(w, "  %3d  %s  %s\n", i+1, padRight(q, questionWidth), status) //nolint:errcheck
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
