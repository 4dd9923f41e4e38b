package operation

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/lexer"
)

// Split cuts a document into its top-level definition blocks. Braces inside
// strings, block strings and comments do not affect the split. If the document
// cannot be tokenised, everything from the failing block onward is returned
// as a final block so the error surfaces when that block is parsed.
func Split(doc string) []string {
	runes := []rune(doc)
	lex := lexer.New(&ast.Source{Input: doc})

	var blocks []string
	emit := func(from, to int) {
		if from < 0 || from >= to {
			return
		}
		if b := strings.TrimSpace(stripLeadingComments(string(runes[from:to]))); b != "" {
			blocks = append(blocks, b)
		}
	}

	depth := 0
	start := -1
	lastEnd := 0
	for {
		tok, err := lex.ReadToken()
		if err != nil {
			if start < 0 {
				start = lastEnd
			}
			emit(start, len(runes))
			return blocks
		}
		if tok.Kind == lexer.EOF {
			emit(start, len(runes))
			return blocks
		}
		if start < 0 {
			start = tok.Pos.Start
		}
		lastEnd = tok.Pos.End
		switch tok.Kind {
		case lexer.BraceL:
			depth++
		case lexer.BraceR:
			depth--
			if depth <= 0 {
				emit(start, tok.Pos.End)
				depth = 0
				start = -1
			}
		}
	}
}

// SplitAll splits every document and concatenates the blocks in order.
func SplitAll(docs ...string) []string {
	var out []string
	for _, d := range docs {
		out = append(out, Split(d)...)
	}
	return out
}
