// Package activity keeps the append-only audit trail of completion requests.
// One line is written per processed question.
package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// TimeLayout is the timestamp layout used in activity lines.
const TimeLayout = "2006-01-02T15:04:05.000000"

// ExcerptWidth is the display width kept from a question.
const ExcerptWidth = 50

// Entry describes one completion request.
type Entry struct {
	Timestamp time.Time
	Section   string
	Question  string
	Model     string
	// Status is the HTTP status, or 0 when none was received.
	Status int
	Err    error
}

// Line renders the entry in the activity log format.
func (e Entry) Line() string {
	status := "None"
	if e.Status != 0 {
		status = strconv.Itoa(e.Status)
	}
	errText := "None"
	if e.Err != nil {
		errText = Excerpt(e.Err.Error(), 0)
	}
	return fmt.Sprintf("Time: %s | Section: %s | Q: %s... | M: %s | Status: %s | Error: %s",
		e.Timestamp.Format(TimeLayout), e.Section, Excerpt(e.Question, ExcerptWidth), e.Model, status, errText)
}

// Excerpt flattens line breaks in s and cuts it to width display columns.
// A width of zero or less only flattens.
func Excerpt(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return flat
	}
	return runewidth.Truncate(flat, width, "")
}
