package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Parser renders user-written post descriptions.
// Raw HTML in the source is omitted, so output is safe to embed.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			// Tables and footnotes are left out: descriptions are short free text
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
				extension.TaskList,
			),
			goldmark.WithParserOptions(
				parser.WithAttribute(),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
				goldmarkhtml.WithXHTML(),
			),
		),
	}
}

// Render converts a description to HTML. Blank input renders to "".
func (p *Parser) Render(description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	var sb strings.Builder
	err := p.md.Convert([]byte(description), &sb)
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
