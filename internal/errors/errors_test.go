package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E104",
			wantMsg: "Invalid scheduler",
			wantCat: CategoryConfig,
		},
		{
			name:    "runtime error",
			code:    "E120",
			wantMsg: "State value mutated in place",
			wantCat: CategoryRuntime,
		},
		{
			name:    "cli error",
			code:    "E200",
			wantMsg: "Unknown demo scenario",
			wantCat: CategoryCLI,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "scenario %q not found", "spiral")
	if err.Message != `scenario "spiral" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `scenario "spiral" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E106")
	got := err.Error()
	want := "E106: Invalid integrity mode"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &Error{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	// With cause
	err3 := New("E100").Wrap(fs.ErrNotExist)
	if want := "E100: Config file not found: file does not exist"; err3.Error() != want {
		t.Errorf("Error() = %q, want %q", err3.Error(), want)
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "signalstate.yaml")
	content := `scheduler: frame
frameInterval: 16ms
integrity: sometimes
log:
  level: info
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E106").WithLocation(tmpFile, 3, 12)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != tmpFile {
		t.Errorf("Location.File = %q, want %q", err.Location.File, tmpFile)
	}
	if err.Location.Line != 3 {
		t.Errorf("Location.Line = %d, want %d", err.Location.Line, 3)
	}
	if len(err.Context) != 5 {
		t.Errorf("len(Context) = %d, want 5", len(err.Context))
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E104").
		WithSuggestion(`Use "frame" or "immediate"`).
		WithExample(`{"scheduler": "frame"}`).
		WithDetail("Custom detail")

	if err.Suggestion != `Use "frame" or "immediate"` {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Example != `{"scheduler": "frame"}` {
		t.Errorf("Example = %q", err.Example)
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "Custom detail")
	}
}

func TestError_Wrap(t *testing.T) {
	inner := New("E102")
	outer := New("E100").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, New("E102")) {
		t.Error("errors.Is should match the wrapped code")
	}
	if stderrors.Is(outer, New("E109")) {
		t.Error("errors.Is should not match an unrelated code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E201") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	se := New("E201")
	if FromError(se, "E200") != se {
		t.Error("FromError should return *Error as-is")
	}

	wrapped := fmt.Errorf("serve: %w", se)
	if FromError(wrapped, "E200") != se {
		t.Error("FromError should find *Error in the chain")
	}

	stdErr := stderrors.New("listen tcp: address in use")
	result := FromError(stdErr, "E201")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E201" {
		t.Errorf("Code = %q, want E201", result.Code)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{
			name: "nil location",
			loc:  nil,
			want: "",
		},
		{
			name: "with column",
			loc:  &Location{File: "signalstate.json", Line: 10, Column: 5},
			want: "signalstate.json:10:5",
		},
		{
			name: "without column",
			loc:  &Location{File: "signalstate.json", Line: 10, Column: 0},
			want: "signalstate.json:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.loc.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "signalstate.json")
	content := `{
  "scheduler": "frame",
  "integrity": "sometimes"
}
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E106").
		WithLocation(tmpFile, 3, 16).
		WithSuggestion(`Use "warn" or "panic"`).
		WithExample(`"integrity": "panic"`).
		Wrap(stderrors.New("unknown mode"))

	formatted := err.Format()

	for _, want := range []string{
		"E106",
		"Invalid integrity mode",
		tmpFile,
		`"integrity": "sometimes"`,
		"Cause: unknown mode",
		"Hint:",
		"Example:",
		"→    3",
		"^",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E105")
	err.Location = &Location{File: "signalstate.yaml", Line: 2, Column: 16}
	compact := err.FormatCompact()

	want := "signalstate.yaml:2:16: E105: Invalid frame interval"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E107").Wrap(stderrors.New("level \"loud\""))
	err.Location = &Location{File: "signalstate.yaml", Line: 4, Column: 3}
	json := err.FormatJSON()

	for _, want := range []string{
		`"code":"E107"`,
		`"category":"config"`,
		`"message":"Invalid log level"`,
		`"location":{"file":"signalstate.yaml","line":4,"column":3}`,
		`"cause":"level \"loud\""`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, json)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	for _, want := range []string{"E100", "E120", "E201"} {
		found := false
		for _, code := range codes {
			if code == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s should be in the codes list", want)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E109")
	if !ok {
		t.Error("E109 should exist")
	}
	if template.Message != "Invalid inspector address" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("E999")
	if ok {
		t.Error("E999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryRuntime,
		Message:  "Custom test error",
		Detail:   "This is a test error",
	})
	defer delete(registry, "E999")

	err := New("E999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColor(t *testing.T) {
	defer SetColor(true)

	SetColor(true)
	if !ColorEnabled() || !strings.Contains(paint("test", ansiRed), "\033[31m") {
		t.Error("paint should contain ANSI code when colors enabled")
	}

	SetColor(false)
	if ColorEnabled() || paint("test", ansiRed) != "test" {
		t.Error("paint should not contain ANSI code when colors disabled")
	}
}

func TestFormatCompactWithCause(t *testing.T) {
	err := New("E201").Wrap(stderrors.New("address in use"))

	want := "E201: Inspector server failed: address in use"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"text", "compact", "json"} {
		if got, err := ParseStyle(s); err != nil || string(got) != s {
			t.Errorf("ParseStyle(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStyle("xml"); err == nil {
		t.Error("ParseStyle(xml) should fail")
	}
}

func TestFprint(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	coded := New("E104").WithSuggestion(`Use "frame"`)
	plain := stderrors.New(`unknown flag: --fast`)

	tests := []struct {
		name  string
		err   error
		style Style
		want  []string
	}{
		{"text", coded, StyleText, []string{"ERROR E104: Invalid scheduler", `Hint: Use "frame"`}},
		{"compact", coded, StyleCompact, []string{"E104: Invalid scheduler\n"}},
		{"json", coded, StyleJSON, []string{`"code":"E104"`, `"suggestion":"Use \"frame\""`}},
		{"plain error", plain, StyleCompact, []string{"E202: Command failed: unknown flag: --fast"}},
		{"plain error json", plain, StyleJSON, []string{`"code":"E202"`, `"cause":"unknown flag: --fast"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			Fprint(&b, tt.err, tt.style)
			for _, want := range tt.want {
				if !strings.Contains(b.String(), want) {
					t.Errorf("Fprint() missing %q:\n%s", want, b.String())
				}
			}
		})
	}

	var b strings.Builder
	Fprint(&b, nil, StyleText)
	if b.Len() != 0 {
		t.Errorf("Fprint(nil) wrote %q", b.String())
	}
}
