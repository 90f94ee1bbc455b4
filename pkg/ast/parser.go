package ast

import (
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser wraps a participle parser for the host surface language, mirroring
// the teacher's pkg/parser.Parser wrapper (New/Parse/ParseString/ParseBytes).
type Parser struct {
	inner *participle.Parser[File]
}

// New builds a Parser for the host language grammar defined in this package.
func New() (*Parser, error) {
	p, err := participle.Build[File](
		participle.Lexer(hostLexer),
		participle.Elide("Whitespace", "Comment", "BlockComment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, err
	}
	return &Parser{inner: p}, nil
}

// Parse reads and parses a full source unit from r.
func (p *Parser) Parse(filename string, r io.Reader) (*File, error) {
	return p.inner.Parse(filename, r)
}

// ParseString parses source text held entirely in memory.
func (p *Parser) ParseString(filename, src string) (*File, error) {
	return p.inner.ParseString(filename, src)
}

// ParseBytes parses source bytes held entirely in memory.
func (p *Parser) ParseBytes(filename string, src []byte) (*File, error) {
	return p.inner.ParseBytes(filename, src)
}

// ParseFile opens and parses a source file from disk, for use by cmd/shaderscriptc.
func (p *Parser) ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(path, f)
}
