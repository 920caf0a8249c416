package digest

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the node kind of a LaTeX span.
var KindMath = ast.NewNodeKind("Math")

// Math is an inline ($...$) or display ($$...$$) LaTeX span. Literal holds
// the source including its delimiters.
type Math struct {
	ast.BaseInline
	Display bool
	Literal []byte
}

func (n *Math) Kind() ast.NodeKind { return KindMath }

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Literal": string(n.Literal)}, nil)
}

// mathParser claims dollar-delimited spans before emphasis and escapes can
// touch them. Code spans and code blocks never reach it.
type mathParser struct{}

func (mathParser) Trigger() []byte { return []byte{'$'} }

func (mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) > 1 && line[1] == '$' {
		return parseDisplayMath(block)
	}

	// Inline math stays on one line and is never empty.
	for i := 1; i < len(line) && line[i] != '\n'; i++ {
		if line[i] != '$' {
			continue
		}
		if i == 1 {
			return nil
		}
		node := &Math{Literal: append([]byte(nil), line[:i+1]...)}
		block.Advance(i + 1)
		return node
	}
	return nil
}

func parseDisplayMath(block text.Reader) ast.Node {
	line, _ := block.PeekLine()
	var lit bytes.Buffer
	lit.WriteString("$$")
	rest := line[2:]
	advance := 2
	for {
		if i := bytes.Index(rest, []byte("$$")); i >= 0 {
			if lit.Len() == 2 && i == 0 {
				return nil
			}
			lit.Write(rest[:i+2])
			block.Advance(advance + i + 2)
			return &Math{Display: true, Literal: lit.Bytes()}
		}
		lit.Write(rest)
		block.AdvanceLine()
		next, _ := block.PeekLine()
		if next == nil {
			return nil
		}
		rest, advance = next, 0
	}
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, renderMath)
}

// renderMath emits the span verbatim (HTML-escaped) for the mail client or
// a math renderer to handle.
func renderMath(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(html.EscapeString(string(n.(*Math).Literal)))
	}
	return ast.WalkSkipChildren, nil
}

// mathExtension passes LaTeX through markdown rendering untouched.
type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(mathParser{}, 150)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(mathRenderer{}, 150)))
}
