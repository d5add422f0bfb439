package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
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
			name:    "dom error",
			code:    "T001",
			wantMsg: "Toast container unavailable",
			wantCat: CategoryDOM,
		},
		{
			name:    "runtime error",
			code:    "T010",
			wantMsg: "Session not found",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "T103",
			wantMsg: "Invalid toast lifetime",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "T999",
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
	err := Newf(CategoryCLI, "template %q not found", "page.html")
	if err.Message != `template "page.html" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want %q", err.Error(), err.Message)
	}
}

func TestToastError_Error(t *testing.T) {
	err := New("T001")
	if got := err.Error(); got != "T001: Toast container unavailable" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := New("T104").Wrap(fmt.Errorf("permission denied"))
	if got := wrapped.Error(); got != "T104: Page template unreadable: permission denied" {
		t.Errorf("Error() = %q", got)
	}
}

func TestToastError_Wrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := New("T101").Wrap(inner)
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find wrapped error")
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return inner error")
	}
}

func TestToastError_Is(t *testing.T) {
	err := fmt.Errorf("notify: %w", New("T001"))
	if !stderrors.Is(err, New("T001")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("T002")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(err, Newf(CategoryDOM, "no code")) {
		t.Error("errors.Is should not match an uncoded error")
	}
}

func TestHasCode(t *testing.T) {
	chain := New("T011").Wrap(New("T012"))
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"outer", chain, "T011", true},
		{"inner", chain, "T012", true},
		{"missing", chain, "T001", false},
		{"fmt wrapped", fmt.Errorf("ctx: %w", chain), "T012", true},
		{"plain", stderrors.New("x"), "T001", false},
		{"nil", nil, "T001", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "T101") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("T010")
	if FromError(orig, "T101") != orig {
		t.Error("FromError should return existing ToastError unchanged")
	}

	std := stderrors.New("boom")
	te := FromError(std, "T101")
	if te.Code != "T101" || te.Wrapped != std {
		t.Errorf("FromError = %+v", te)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("T001").
		WithDetail("document has no <body> element").
		WithSuggestion("Include a <body> in the page template")

	out := err.Format()
	for _, want := range []string{
		"ERROR T001: Toast container unavailable",
		"document has no <body> element",
		"Hint: Include a <body> in the page template",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("T102").WithDetail("port 70000")
	if got := err.FormatCompact(); got != "T102: Invalid port (port 70000)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("T010").WithSuggestion("reload the page")
	got := err.FormatJSON()
	for _, want := range []string{`"code":"T010"`, `"category":"runtime"`, `"suggestion":"reload the page"`} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatJSON() = %s, missing %s", got, want)
		}
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError plain = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, New("T100"))
	if !strings.Contains(buf.String(), "ERROR T100: Config file not found") {
		t.Errorf("PrintError coded = %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("expected registered codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("T900", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "T900")

	tmpl, ok := GetTemplate("T900")
	if !ok || tmpl.Message != "Custom" {
		t.Errorf("GetTemplate(T900) = %+v, %v", tmpl, ok)
	}
	if New("T900").Category != CategoryCLI {
		t.Error("New should use registered template")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than width", l)
		}
	}
	if strings.Join(lines, " ") != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}
