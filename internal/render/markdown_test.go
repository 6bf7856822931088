package render

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	m := New()
	out, err := m.HTML("(Confidence: 80%)\n**Restart** the router.")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "<strong>Restart</strong>") {
		t.Errorf("expected bold markup, got %q", out)
	}
	if !strings.Contains(out, "<br") {
		t.Errorf("expected hard wrap, got %q", out)
	}
}

func TestHTMLEscapesRawHTML(t *testing.T) {
	out, err := New().HTML("<script>alert(1)</script> reboot")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html must not pass through: %q", out)
	}
}

func TestPlain(t *testing.T) {
	m := New()
	tests := []struct {
		in, want string
	}{
		{"Glad I could help! ✅", "Glad I could help! ✅"},
		{"**Restart** the _router_.", "Restart the router."},
		{"Line one\nline two", "Line one line two"},
		{"- first\n- second", "first second"},
		{"Run `ipconfig /flushdns` now", "Run ipconfig /flushdns now"},
		{"# Profile\nPoints: 5", "Profile Points: 5"},
	}
	for _, tt := range tests {
		if got := m.Plain(tt.in); got != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
