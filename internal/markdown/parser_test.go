package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	p := NewParser()

	html, err := p.Render("**Bab 1**\nPendahuluan")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<strong>Bab 1</strong>") {
		t.Errorf("missing emphasis: %s", html)
	}
	if !strings.Contains(html, "<br />") {
		t.Errorf("hard wraps not rendered: %s", html)
	}

	html, err = p.Render(`<script>alert(1)</script>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw html leaked: %s", html)
	}

	if html, _ := p.Render(""); html != "" {
		t.Errorf("empty description rendered %q", html)
	}
}
