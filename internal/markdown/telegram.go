// Package markdown renders model output, which is ordinary CommonMark, in
// Telegram's MarkdownV2 dialect.
package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Outside of entities every one of these must be escaped, the backslash included.
var specialChars = strings.NewReplacer(
	`\`, `\\`,
	`_`, `\_`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`~`, `\~`,
	"`", "\\`",
	`>`, `\>`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`.`, `\.`,
	`!`, `\!`,
)

var (
	codeChars = strings.NewReplacer(`\`, `\\`, "`", "\\`")
	linkChars = strings.NewReplacer(`\`, `\\`, `)`, `\)`)
)

// Escape makes text safe to send as literal MarkdownV2.
func Escape(text string) string {
	return specialChars.Replace(text)
}

// Converter parses markdown with goldmark and re-renders it as MarkdownV2.
// It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
	}
}

// Format converts src. Formatting the parser understands is kept; anything
// else is escaped so Telegram shows it verbatim.
func (c *Converter) Format(src string) string {
	source := []byte(src)
	doc := c.md.Parser().Parse(text.NewReader(source))

	r := renderer{source: source}
	return strings.TrimRight(r.blocks(doc, "\n\n"), "\n")
}

type renderer struct {
	source    []byte
	inHeading bool
}

func (r *renderer) blocks(parent ast.Node, sep string) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := r.block(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (r *renderer) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return r.inlines(n)
	case *ast.Heading:
		r.inHeading = true
		defer func() { r.inHeading = false }()
		return "*" + r.inlines(n) + "*"
	case *ast.ThematicBreak:
		return "————————"
	case *ast.FencedCodeBlock:
		return "```" + string(n.Language(r.source)) + "\n" + codeChars.Replace(r.lines(n)) + "```"
	case *ast.CodeBlock:
		return "```\n" + codeChars.Replace(r.lines(n)) + "```"
	case *ast.Blockquote:
		inner := strings.Split(r.blocks(n, "\n\n"), "\n")
		for i, line := range inner {
			inner[i] = ">" + line
		}
		return strings.Join(inner, "\n")
	case *ast.List:
		return r.list(n)
	case *ast.HTMLBlock:
		raw := r.lines(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(r.source))
		}
		return Escape(strings.TrimRight(raw, "\n"))
	default:
		if n.HasChildren() {
			return r.blocks(n, "\n\n")
		}
		return Escape(strings.TrimRight(r.lines(n), "\n"))
	}
}

func (r *renderer) list(l *ast.List) string {
	sep := "\n\n"
	if l.IsTight {
		sep = "\n"
	}

	number := l.Start
	var items []string
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if l.IsOrdered() {
			marker = strconv.Itoa(number) + Escape(string(l.Marker))
			number++
		}

		body := r.blocks(item, sep)
		pad := strings.Repeat(" ", len([]rune(marker))+1)
		body = strings.ReplaceAll(body, "\n", "\n"+pad)
		items = append(items, marker+" "+body)
	}
	return strings.Join(items, sep)
}

func (r *renderer) lines(n ast.Node) string {
	var b strings.Builder
	segments := n.Lines()
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		b.Write(segment.Value(r.source))
	}
	return b.String()
}

func (r *renderer) inlines(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.inline(&b, n)
	}
	return b.String()
}

func (r *renderer) inline(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.WriteString(Escape(string(literal(n.Segment.Value(r.source)))))
		if n.SoftLineBreak() || n.HardLineBreak() {
			b.WriteByte('\n')
		}
	case *ast.String:
		b.WriteString(Escape(string(n.Value)))
	case *ast.CodeSpan:
		b.WriteString("`" + codeChars.Replace(r.plain(n)) + "`")
	case *ast.Emphasis:
		// Telegram rejects bold nested in bold.
		if n.Level >= 2 && r.inHeading {
			b.WriteString(r.inlines(n))
			return
		}
		mark := "_"
		if n.Level >= 2 {
			mark = "*"
		}
		b.WriteString(mark + r.inlines(n) + mark)
	case *east.Strikethrough:
		b.WriteString("~" + r.inlines(n) + "~")
	case *ast.Link:
		b.WriteString("[" + r.inlines(n) + "](" + linkChars.Replace(string(n.Destination)) + ")")
	case *ast.Image:
		b.WriteString("[" + Escape(r.plain(n)) + "](" + linkChars.Replace(string(n.Destination)) + ")")
	case *ast.AutoLink:
		label := string(n.Label(r.source))
		b.WriteString("[" + Escape(label) + "](" + linkChars.Replace(string(n.URL(r.source))) + ")")
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			b.WriteString(Escape(string(segment.Value(r.source))))
		}
	default:
		b.WriteString(r.inlines(n))
	}
}

// literal undoes backslash escapes and character references.
func literal(value []byte) []byte {
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}

// plain collects the literal text below n without any markup.
func (r *renderer) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch child := child.(type) {
		case *ast.Text:
			b.Write(child.Segment.Value(r.source))
		case *ast.String:
			b.Write(child.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
