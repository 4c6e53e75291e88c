package records

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	questionKey = "- question:"
	answerKey   = "  answer:"
	flaggedKey  = "  flagged:"

	// continuation lines of an answer are indented by this margin
	margin = "    "

	maxLineSize = 16 * 1024 * 1024
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Encode writes recs in the answer-block layout:
//
//	- question: <question on one line>
//	  answer: <first answer line>
//	    <next answer line>
//	    ...
//	  flagged: true
//
// The question is trimmed and its line breaks folded into single spaces. The
// answer is trimmed and every line after the first is re-indented by a fixed
// four-space margin. The flagged line is only written for flagged records.
func Encode(w io.Writer, recs []OutputRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		writeField(bw, questionKey, singleLine(rec.Question))

		lines := answerLines(rec.Answer)
		writeField(bw, answerKey, lines[0])
		for _, line := range lines[1:] {
			bw.WriteString(margin)
			bw.WriteString(line)
			bw.WriteByte('\n')
		}

		if rec.Flagged {
			writeField(bw, flaggedKey, "true")
		}
	}
	return bw.Flush()
}

func writeField(w *bufio.Writer, key, value string) {
	w.WriteString(key)
	if value != "" {
		w.WriteByte(' ')
		w.WriteString(value)
	}
	w.WriteByte('\n')
}

func singleLine(s string) string {
	parts := strings.Split(newlines.Replace(s), "\n")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func answerLines(s string) []string {
	return strings.Split(strings.TrimSpace(newlines.Replace(s)), "\n")
}

type decodeStage int

const (
	stageStart decodeStage = iota
	stageQuestion
	stageAnswer
	stageFlagged
)

// Decode parses an answers file written by Encode.
//
// Blank lines between records are ignored. Blank lines inside an answer are
// kept as empty answer lines when more answer text follows them. Any other
// line that does not fit the layout is reported with its line number.
func Decode(r io.Reader) ([]OutputRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		recs   = []OutputRecord{}
		cur    OutputRecord
		answer []string
		blanks int
		stage  = stageStart
		lineNo int
		qLine  int
	)

	finish := func() {
		if stage == stageAnswer || stage == stageFlagged {
			cur.Answer = strings.Join(answer, "\n")
			recs = append(recs, cur)
		}
		cur, answer, blanks = OutputRecord{}, nil, 0
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "" && !strings.HasPrefix(line, margin):
			blanks++

		case strings.HasPrefix(line, questionKey):
			if stage == stageQuestion {
				return nil, fmt.Errorf("records: line %d: question without an answer", qLine)
			}
			finish()
			cur.Question = fieldValue(line, questionKey)
			qLine = lineNo
			stage = stageQuestion

		case strings.HasPrefix(line, answerKey):
			if stage != stageQuestion {
				return nil, fmt.Errorf("records: line %d: answer without a question", lineNo)
			}
			answer = []string{fieldValue(line, answerKey)}
			blanks = 0
			stage = stageAnswer

		case strings.HasPrefix(line, margin):
			if stage != stageAnswer {
				return nil, fmt.Errorf("records: line %d: continuation line outside an answer", lineNo)
			}
			for ; blanks > 0; blanks-- {
				answer = append(answer, "")
			}
			answer = append(answer, strings.TrimPrefix(line, margin))

		case strings.HasPrefix(line, flaggedKey):
			if stage != stageAnswer {
				return nil, fmt.Errorf("records: line %d: flagged line outside a record", lineNo)
			}
			switch v := fieldValue(line, flaggedKey); v {
			case "true":
				cur.Flagged = true
			case "false":
			default:
				return nil, fmt.Errorf("records: line %d: invalid flagged value %q", lineNo, v)
			}
			blanks = 0
			stage = stageFlagged

		default:
			return nil, fmt.Errorf("records: line %d: unexpected content %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("records: read: %w", err)
	}
	if stage == stageQuestion {
		return nil, fmt.Errorf("records: line %d: question without an answer", qLine)
	}
	finish()
	return recs, nil
}

func fieldValue(line, key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(line, key), " ")
}
