package service

import (
	"encoding/json"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain", "revenue", "revenue"},
		{"all five", `<a href="x">&'`, "&lt;a href=&quot;x&quot;&gt;&amp;&#39;"},
		{"number", json.Number("12.50"), "12.50"},
		{"float", 3.25, "3.25"},
		{"bool", true, "true"},
		{"unicode untouched", "café ü 北京", "café ü 北京"},
		{"object", map[string]any{"k": "<v>"}, "{&quot;k&quot;:&quot;\\u003cv\\u003e&quot;}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeHTML(tt.in); got != tt.want {
				t.Errorf("EscapeHTML(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeHTMLNotIdempotent(t *testing.T) {
	once := EscapeHTML("<")
	if once != "&lt;" {
		t.Fatalf("EscapeHTML(<) = %q", once)
	}
	if twice := EscapeHTML(once); twice != "&amp;lt;" {
		t.Errorf("EscapeHTML(EscapeHTML(<)) = %q, want &amp;lt;", twice)
	}
}
