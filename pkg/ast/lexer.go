// Package ast defines the Abstract Syntax Tree for the shaderscript host
// language: the JavaScript-family surface syntax that carries @kernel,
// @vertex, @fragment and @device annotated functions.
package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// hostLexer is the stateful lexer for the host surface language. It mirrors
// the shape of the teacher's Guix lexer (a single "Root" state plus doc
// comments captured as tokens instead of elided) rather than a full
// TypeScript tokenizer — see SPEC_FULL.md §0 for the pinned-down subset.
var hostLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "DocComment", Pattern: `/\*\*(?:[^*]|\*+[^*/])*\*+/`},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Keyword", Pattern: `\b(import|from|const|let|var|interface|type|function|export|async|await|return|if|else|for|while|do|switch|case|default|break|continue|as|true|false|null|undefined)\b`},
		{Name: "Op", Pattern: `(==|!=|<=|>=|&&|\|\||\+=|-=|\*=|/=|\+\+|--|[+\-*/%<>=!])`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Number", Pattern: `[0-9]+\.?[0-9]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Punct", Pattern: `[{}()\[\],;:.?]`},
	},
})
