package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
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
			name:    "reconcile diagnostic",
			code:    "W001",
			wantMsg: "Duplicate cache key in render pass",
			wantCat: CategoryReconcile,
		},
		{
			name:    "config error",
			code:    "E040",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "snapshot error",
			code:    "E060",
			wantMsg: "Snapshot not found",
			wantCat: CategorySnapshot,
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
	err := Newf(CategoryCLI, "demo %q not found", "clock")
	if err.Message != `demo "clock" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := New("E061").Wrap(cause)

	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
	if !strings.Contains(err.Error(), "E061") || !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E061") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E060")
	if FromError(orig, "E061") != orig {
		t.Error("FromError should return an existing WeftError unchanged")
	}

	wrapped := FromError(os.ErrPermission, "E061")
	if wrapped.Code != "E061" || wrapped.Wrapped != os.ErrPermission {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestWithLocationReadsContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weft.json")
	content := "{\n  \"render\": {\n    \"maxFlattenDepth\": 0\n  }\n}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E040").WithLocation(path, 3, 24)
	if len(err.Context) == 0 {
		t.Fatal("expected context lines")
	}
	found := false
	for _, line := range err.Context {
		if strings.Contains(line, "maxFlattenDepth") {
			found = true
		}
	}
	if !found {
		t.Errorf("context %q does not include the target line", err.Context)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E040").WithSuggestion("set a positive value")
	out := err.Format()
	for _, want := range []string{"ERROR E040", "Invalid configuration", "Hint: set a positive value"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	warn := New("W002").Format()
	if !strings.Contains(warn, "WARNING W002") {
		t.Errorf("diagnostic should format as a warning:\n%s", warn)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E062")
	err.Location = &Location{File: "weft.json", Line: 2}
	if got := err.FormatCompact(); got != "weft.json:2: E062: Invalid snapshot name" {
		t.Errorf("FormatCompact = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E042").WithDetail(`bad "quote"`).Wrap(fmt.Errorf("line 3"))
	err.Location = &Location{File: "weft.yaml", Line: 3}

	var got map[string]any
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v\n%s", e, err.FormatJSON())
	}
	if got["code"] != "E042" || got["category"] != "config" || got["detail"] != `bad "quote"` || got["cause"] != "line 3" {
		t.Errorf("FormatJSON = %v", got)
	}
	loc, _ := got["location"].(map[string]any)
	if loc["file"] != "weft.yaml" || loc["line"] != float64(3) {
		t.Errorf("location = %v", got["location"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b bytes.Buffer
	Fprint(&b, fmt.Errorf("plain failure"), OutputJSON)
	if strings.TrimSpace(b.String()) != `{"message":"plain failure"}` {
		t.Errorf("json of a plain error = %q", b.String())
	}

	b.Reset()
	Fprint(&b, New("E080"), "unknown")
	if !strings.Contains(b.String(), "E080") || !strings.Contains(b.String(), "\n\n") {
		t.Errorf("unknown format should fall back to text:\n%s", b.String())
	}
}

func TestLogValue(t *testing.T) {
	v := New("W003").LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}
	attrs := v.Group()
	if attrs[0].Key != "code" || attrs[0].Value.String() != "W003" {
		t.Errorf("first attr = %v", attrs[0])
	}
}

func TestRegistryConsistency(t *testing.T) {
	for _, code := range Codes() {
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
		if IsDiagnostic(code) != strings.HasPrefix(code, "W") {
			t.Errorf("IsDiagnostic(%s) inconsistent", code)
		}
	}
}
