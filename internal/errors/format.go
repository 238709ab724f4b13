package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

// Style selects how Fprint renders an error.
type Style string

const (
	// StyleText is the multi-line terminal rendering with source context.
	StyleText Style = "text"

	// StyleCompact is a single file:line: CODE: message line, for editors.
	StyleCompact Style = "compact"

	// StyleJSON is one JSON object per error, for tooling.
	StyleJSON Style = "json"
)

// ParseStyle validates an --error-format value.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleText, StyleCompact, StyleJSON:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown error format %q (want text, compact or json)", s)
}

// ANSI escape sequences used by the text style.
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiWhite = "\033[37m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

var colorEnabled atomic.Bool

func init() {
	colorEnabled.Store(true)
}

// SetColor turns ANSI colors on or off for every rendering.
func SetColor(enabled bool) {
	colorEnabled.Store(enabled)
}

// ColorEnabled reports whether ANSI colors are on.
func ColorEnabled() bool {
	return colorEnabled.Load()
}

// paint wraps text in the given escape sequences when colors are on.
func paint(text string, codes ...string) string {
	if !colorEnabled.Load() || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format returns the error formatted for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	title := "ERROR: "
	if e.Code != "" {
		title = "ERROR " + e.Code + ": "
	}
	fmt.Fprintf(&b, "\n%s%s\n\n", paint(title, ansiRed, ansiBold), paint(e.Message, ansiWhite))

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", paint(e.Location.String(), ansiCyan))
		if len(e.Context) > 0 {
			e.writeContext(&b)
			b.WriteString("\n")
		}
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", paint("Cause: ", ansiGray), e.Wrapped.Error())
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint("Hint: ", ansiCyan), e.Suggestion)
	}

	if e.Example != "" {
		fmt.Fprintf(&b, "  %s\n", paint("Example:", ansiCyan))
		for _, line := range strings.Split(e.Example, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// writeContext renders the source lines around Location, marking the
// offending line and, when known, the column.
func (e *Error) writeContext(b *strings.Builder) {
	first := e.Location.Line - len(e.Context)/2
	gutter := paint(" │ ", ansiGray)

	for i, line := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gutter, line)
			continue
		}

		fmt.Fprintf(b, "  %s%4d%s%s\n", paint("→ ", ansiRed), n, gutter, line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n",
				paint("│ ", ansiGray),
				strings.Repeat(" ", e.Location.Column-1),
				paint("^", ansiRed))
		}
	}
}

// FormatCompact returns a single-line rendering:
// file:line:col: CODE: message: cause.
func (e *Error) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Cause      string    `json:"cause,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Example    string    `json:"example,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
		Example:    e.Example,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}

	data, err := json.Marshal(out)
	if err != nil {
		// Every field is a string or int.
		panic(err)
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// Fprint writes err to w in the given style. Errors that are not *Error
// are reported as E202 with err as the cause.
func Fprint(w io.Writer, err error, style Style) {
	if err == nil {
		return
	}
	e := FromError(err, "E202")

	switch style {
	case StyleJSON:
		fmt.Fprintln(w, e.FormatJSON())
	case StyleCompact:
		fmt.Fprintln(w, e.FormatCompact())
	default:
		fmt.Fprint(w, e.Format())
	}
}
