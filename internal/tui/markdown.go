package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRe  = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	inlineCodeRe = regexp.MustCompile(`<code>([^<]+)</code>`)
	headingRe    = regexp.MustCompile(`<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	strongRe     = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRe         = regexp.MustCompile(`<em>(.*?)</em>`)
	linkRe       = regexp.MustCompile(`<a href="([^"]*)"[^>]*>(.*?)</a>`)
	listItemRe   = regexp.MustCompile(`<li>(?s)(.*?)</li>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer converts assistant markdown into styled terminal text
// with syntax-highlighted code blocks.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("dracula"),
	}
}

// Render converts markdown to terminal output. On any conversion failure the
// raw content is returned unchanged.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.terminalize(buf.String(), width)
}

func (r *MarkdownRenderer) terminalize(htmlContent string, width int) string {
	out := htmlContent

	// Code blocks are highlighted first and parked behind placeholders so
	// later tag stripping cannot touch them.
	var parked []string
	out = codeBlockRe.ReplaceAllStringFunc(out, func(block string) string {
		sub := codeBlockRe.FindStringSubmatch(block)
		if len(sub) < 3 {
			return block
		}
		code := decodeEntities(sub[2])
		highlighted := r.highlight(strings.TrimRight(code, "\n"), sub[1])
		styled := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1).
			Render(highlighted)
		parked = append(parked, styled)
		return fmt.Sprintf("\n{{CODE_%d}}\n", len(parked)-1)
	})

	out = inlineCodeRe.ReplaceAllStringFunc(out, func(tag string) string {
		sub := inlineCodeRe.FindStringSubmatch(tag)
		if len(sub) < 2 {
			return tag
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrompt)).
			Render(decodeEntities(sub[1]))
	})

	out = headingRe.ReplaceAllStringFunc(out, func(tag string) string {
		sub := headingRe.FindStringSubmatch(tag)
		if len(sub) < 3 {
			return tag
		}
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent2)).
			Render(htmlTagRe.ReplaceAllString(sub[2], "")) + "\n"
	})

	out = strongRe.ReplaceAllString(out, "\x1b[1m$1\x1b[22m")
	out = emRe.ReplaceAllString(out, "\x1b[3m$1\x1b[23m")

	out = linkRe.ReplaceAllStringFunc(out, func(tag string) string {
		sub := linkRe.FindStringSubmatch(tag)
		if len(sub) < 3 {
			return tag
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Underline(true).
			Render(fmt.Sprintf("%s (%s)", sub[2], sub[1]))
	})

	out = listItemRe.ReplaceAllStringFunc(out, func(tag string) string {
		sub := listItemRe.FindStringSubmatch(tag)
		if len(sub) < 2 {
			return tag
		}
		item := strings.TrimSpace(htmlTagRe.ReplaceAllString(sub[1], ""))
		return "  • " + item + "\n"
	})

	out = strings.ReplaceAll(out, "</p>", "\n")
	out = htmlTagRe.ReplaceAllString(out, "")
	out = decodeEntities(out)

	for i, block := range parked {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{CODE_%d}}", i), block)
	}

	out = blankRunsRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x60;", "`",
	"&nbsp;", " ",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
