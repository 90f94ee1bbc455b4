package ast

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Pos is the position type participle auto-populates on any field of this
// exact type named Pos — every node embeds one for diagnostic anchoring,
// matching the teacher's Pos lexer.Position convention.
type Pos = lexer.Position

// File is a parsed source unit: the root of the host-language AST. The core
// only reads it; pkg/hostrewrite prints a rewritten copy of it as text and
// leaves the tree itself unchanged.
type File struct {
	Pos   Pos
	Decls []*Decl `@@*`
}

// Decl is a top-level declaration. Ordered choice: the more specific
// keyword-led forms are tried before the others, matching the style of the
// teacher's BodyStatement/Node alternation.
type Decl struct {
	Pos       Pos
	Import    *Import        `  @@`
	Const     *ConstDecl     `| @@`
	Interface *InterfaceDecl `| @@`
	TypeAlias *TypeAliasDecl `| @@`
	Func      *FuncDecl      `| @@`
}

// Import represents `import { a, b } from "module";`.
type Import struct {
	Pos   Pos
	Names []string `"import" "{" @Ident ("," @Ident)* "}" "from"`
	Path  string   `@String ";"?`
}

// ConstDecl is a top-level immutable binding. Per spec.md §3's Global
// constant descriptor, only a numeric-literal initializer is copied into
// emitted shaders; Type may be absent.
type ConstDecl struct {
	Pos   Pos
	Name  string   `"const" @Ident`
	Type  *TypeRef `(":" @@)?`
	Value string   `"=" @Number ";"?`
}

// InterfaceDecl is a named record type declared with `interface`.
type InterfaceDecl struct {
	Pos    Pos
	Name   string       `"interface" @Ident "{"`
	Fields []*FieldDecl `@@* "}"`
}

// TypeAliasDecl is `type Name = { ... };` or `type Name = SomeType;`. Only
// the object-literal form synthesizes a struct (spec.md §4.B); the other
// form is kept so the parser accepts it and the Struct Synthesizer can
// reject it with a diagnostic rather than fail to parse.
type TypeAliasDecl struct {
	Pos    Pos
	Name   string      `"type" @Ident "="`
	Object *ObjectType `(  @@`
	Other  *TypeRef    ` | @@ ) ";"?`
}

// ObjectType is the `{ field: Type; ... }` right-hand side of a type alias;
// fields may be separated by `;` or `,`.
type ObjectType struct {
	Pos    Pos
	Fields []*FieldDecl `"{" (@@ ","?)* "}"`
}

// FieldDecl is one `name: Type` field, used by both interfaces and
// object-literal type aliases.
type FieldDecl struct {
	Pos  Pos
	Name string   `@Ident`
	Type *TypeRef `":" @@ ";"?`
}

// TypeRef is a surface type reference as written, including a single level
// of generic nesting (`Name<Inner>`), recursively, for SharedArray<Atomic<T>>
// and similar forms (spec.md §4.A).
type TypeRef struct {
	Pos     Pos
	Name    string   `@Ident`
	Generic *TypeRef `("<" @@ ">")?`
}

// Text renders the TypeRef back to the surface-syntax text the Type Mapper
// expects as input — the inverse of parsing, not a formatter.
func (t *TypeRef) Text() string {
	if t == nil {
		return ""
	}
	if t.Generic != nil {
		return t.Name + "<" + t.Generic.Text() + ">"
	}
	return t.Name
}

// FuncDecl is a top-level function declaration. Doc carries the raw
// /** ... */ block (if any); decoding it into an Annotation is the caller's
// job via ParseAnnotations, keeping the parser itself free of any semantic
// interpretation of the tags it captures.
type FuncDecl struct {
	Pos        Pos
	Doc        *string  `@DocComment?`
	Export     bool     `@"export"?`
	Async      bool     `@"async"?`
	Name       string   `"function" @Ident`
	Params     []*Param `"(" (@@ ("," @@)*)? ")"`
	ReturnType *TypeRef `(":" @@)?`
	Body       *Block   `@@`
}

// Param is one function parameter, always explicitly typed (the host
// grammar has no inference to fall back on).
type Param struct {
	Pos  Pos
	Name string   `@Ident`
	Type *TypeRef `":" @@`
}

// Block is a brace-delimited statement list.
type Block struct {
	Pos        Pos
	Statements []*Stmt `"{" @@* "}"`
}

// Stmt is one statement inside a function body. Ordered so that the
// Postfix and plain-expression alternatives — which can both start with a
// bare identifier — are tried last, mirroring the teacher's comment that
// CallStmt-shaped alternatives must come last to minimize grammar conflicts.
type Stmt struct {
	Pos      Pos
	VarDecl  *VarDeclStmt  `  @@`
	If       *IfStmt       `| @@`
	For      *ForStmt      `| @@`
	While    *WhileStmt    `| @@`
	DoWhile  *DoWhileStmt  `| @@`
	Switch   *SwitchStmt   `| @@`
	Break    *BreakStmt    `| @@`
	Continue *ContinueStmt `| @@`
	Return   *ReturnStmt   `| @@`
	Assign   *AssignStmt   `| @@`
	Postfix  *PostfixStmt  `| @@`
	ExprStmt *ExprStmt     `| @@`
}

// VarDeclStmt is a `let`/`const`/`var` declaration. const is the immutable
// form (rendered `let` in WGSL); let/var are mutable (rendered `var`) — see
// DESIGN.md for this Open-Question resolution.
type VarDeclStmt struct {
	Pos  Pos
	Kind string   `@("let" | "const" | "var")`
	Name string   `@Ident`
	Type *TypeRef `(":" @@)?`
	Init *Expr    `("=" @@)? ";"?`
}

// Mutable reports whether the binding renders as WGSL `var` rather than `let`.
func (v *VarDeclStmt) Mutable() bool { return v.Kind != "const" }

// Target is the left-hand side of an assignment or a postfix increment: a
// base identifier followed by any number of field/index suffixes.
type Target struct {
	Pos      Pos
	Name     string          `@Ident`
	Suffixes []*TargetSuffix `@@*`
}

// Text renders the target back to surface-syntax text.
func (t *Target) Text() string {
	var b strings.Builder
	b.WriteString(t.Name)
	for _, s := range t.Suffixes {
		if s.Field != nil {
			b.WriteString(".")
			b.WriteString(*s.Field)
		}
	}
	return b.String()
}

// TargetSuffix is one `.field` step of a Target. Index suffixes on
// assignment targets are handled directly by AssignStmt.Index below, since
// only a single trailing index is meaningful there (`a.b[i] = x`).
type TargetSuffix struct {
	Pos   Pos
	Field *string `"." @Ident`
}

// AssignStmt is `target(.field)*([index])? op expr;`.
type AssignStmt struct {
	Pos    Pos
	Target *Target `@@`
	Index  *Expr   `("[" @@ "]")?`
	Op     string  `@("+=" | "-=" | "*=" | "/=" | "=")`
	Value  *Expr   `@@ ";"?`
}

// PostfixStmt is a bare `target++;` / `target--;` expression statement.
type PostfixStmt struct {
	Pos    Pos
	Target *Target `@@`
	Op     string  `@("++" | "--") ";"?`
}

// ExprStmt is a call expression used as a statement, e.g. `atomicAdd(...)`.
type ExprStmt struct {
	Pos   Pos
	Await bool  `@"await"?`
	Call  *Expr `@@ ";"?`
}

// IfStmt is `if (cond) { ... } (else ...)?`.
type IfStmt struct {
	Pos  Pos
	Cond *Expr       `"if" "(" @@ ")"`
	Then *Block      `@@`
	Else *ElseClause `@@?`
}

// ElseClause is `else if (...) {...}` or a plain `else {...}`.
type ElseClause struct {
	Pos   Pos
	If    *IfStmt `"else" (  @@`
	Block *Block  ` | @@ )`
}

// ForStmt is a C-style `for (init; cond; post) { ... }` loop. Range-based
// for-loops are not part of the host subset (spec.md has no such form).
type ForStmt struct {
	Pos        Pos
	Init       *ForInit `"for" "(" @@`
	Cond       *Expr    `";" @@`
	PostTarget *Target  `";" @@`
	PostOp     string   `@("++" | "--" | "+=" | "-=" | "=")`
	PostValue  *Expr    `(@@)? ")"`
	Body       *Block   `@@`
}

// ForInit is a for-loop initializer: the same shape as VarDeclStmt but
// without its own trailing optional semicolon, since ForStmt consumes that
// separator itself between init, cond and post clauses.
type ForInit struct {
	Pos  Pos
	Kind string   `@("let" | "const" | "var")`
	Name string   `@Ident`
	Type *TypeRef `(":" @@)?`
	Init *Expr    `("=" @@)?`
}

// Mutable reports whether the binding renders as WGSL `var` rather than `let`.
func (v *ForInit) Mutable() bool { return v.Kind != "const" }

// WhileStmt is `while (cond) { ... }`.
type WhileStmt struct {
	Pos  Pos
	Cond *Expr  `"while" "(" @@ ")"`
	Body *Block `@@`
}

// DoWhileStmt is `do { ... } while (cond);`, lowered by the translator into
// the target language's `loop { ...; if (!(cond)) { break; } }` form
// (spec.md §4.C) since the target language has no native do-while.
type DoWhileStmt struct {
	Pos  Pos
	Body *Block `"do" @@`
	Cond *Expr  `"while" "(" @@ ")" ";"?`
}

// SwitchStmt is `switch (tag) { case v: ...; default: ...; }`.
type SwitchStmt struct {
	Pos   Pos
	Tag   *Expr         `"switch" "(" @@ ")" "{"`
	Cases []*CaseClause `@@* "}"`
}

// CaseClause is one `case value:` or `default:` arm.
type CaseClause struct {
	Pos       Pos
	Value     *Expr   `(  "case" @@ ":"`
	IsDefault bool    ` | @"default" ":" )`
	Body      []*Stmt `@@*`
}

// BreakStmt, ContinueStmt and ReturnStmt are preserved verbatim by the
// translator (spec.md §4.C).
type BreakStmt struct {
	Pos    Pos
	Marker bool `@"break" ";"?`
}

type ContinueStmt struct {
	Pos    Pos
	Marker bool `@"continue" ";"?`
}

type ReturnStmt struct {
	Pos   Pos
	Value *Expr `"return" (@@)? ";"?`
}

// Expr is the top of the expression grammar: a ternary, falling through to
// a flat binary-operator chain when there is no `? :`.
type Expr struct {
	Pos  Pos
	Cond *OrExpr `@@`
	Then *Expr   `("?" @@`
	Else *Expr   `":" @@)?`
}

// IsTernary reports whether this Expr carries a `cond ? then : else` form.
func (e *Expr) IsTernary() bool { return e.Then != nil && e.Else != nil }

// OrExpr is a flat left-to-right operator chain. Precedence is preserved by
// pass-through of parentheses (spec.md §4.C) rather than by grammar
// structure — the translator re-emits operators in the same left-to-right
// sequence the parser captured, which is correct because the target
// language shares the host language's C-family precedence rules.
type OrExpr struct {
	Pos  Pos
	Left *UnaryExpr  `@@`
	Ops  []*BinaryOp `@@*`
}

// BinaryOp is one `op operand` step of an OrExpr chain.
type BinaryOp struct {
	Pos   Pos
	Op    string     `@("==" | "!=" | "<=" | ">=" | "<" | ">" | "&&" | "||" | "+" | "-" | "*" | "/" | "%")`
	Right *UnaryExpr `@@`
}

// UnaryExpr is an optional prefix `-`/`!` applied to an AsExpr.
type UnaryExpr struct {
	Pos     Pos
	Op      string  `@("!" | "-")?`
	Operand *AsExpr `@@`
}

// AsExpr wraps a Primary with an optional postfix `++`/`--` and an optional
// `as Type` type assertion, which the translator strips entirely (spec.md
// §4.C: "only the inner expression is emitted").
type AsExpr struct {
	Pos     Pos
	Await   bool     `@"await"?`
	Primary *Primary `@@`
	Postfix string   `@("++" | "--")?`
	AsType  *TypeRef `("as" @@)?`
}

// Primary is a literal, a parenthesized sub-expression, or an identifier
// chain (AtomExpr).
type Primary struct {
	Pos   Pos
	Lit   *Literal  `  @@`
	Paren *Expr     `| "(" @@ ")"`
	Atom  *AtomExpr `| @@`
}

// AtomExpr is a base identifier followed by any number of `.field`,
// `[index]` or `(args)` suffixes — a general postfix chain covering struct
// field access, vector swizzles, element access and call expressions
// (spec.md §4.C).
type AtomExpr struct {
	Pos      Pos
	Base     string        `@Ident`
	Suffixes []*ExprSuffix `@@*`
}

// ExprSuffix is one step of an AtomExpr's postfix chain.
type ExprSuffix struct {
	Pos   Pos
	Field *string     `(  "." @Ident`
	Index *Expr       ` | "[" @@ "]"`
	Call  *CallSuffix ` | @@ )`
}

// CallSuffix is a call's optional type argument (the dispatch contract's
// `fn<[Wx, Wy, Wz]>(...)` shape, spec.md §6) plus its argument list. The
// type argument is parsed permissively as CallTypeArg, accepting both the
// well-formed numeric tuple and an arbitrary type-shaped argument, so a
// malformed call site (spec.md §7's Malformed-workgroup-count) parses
// successfully and can be left unchanged with a diagnostic rather than
// failing the parse outright.
type CallSuffix struct {
	Pos      Pos
	TypeArgs *CallTypeArg `("<" @@ ">")?`
	Args     []*Expr      `"(" (@@ ("," @@)*)? ")"`
}

// CallTypeArg is a call site's type argument: either the numeric tuple the
// dispatch contract expects, or — when malformed — an arbitrary type
// reference, which the Host Rewriter rejects with a diagnostic and leaves
// untouched (spec.md §7).
type CallTypeArg struct {
	Pos   Pos
	Tuple *TypeArgTuple `  @@`
	Type  *TypeRef      `| @@`
}

// TypeArgTuple is the `[a, b, c]` numeric-literal tuple carried by a kernel
// call site's type argument.
type TypeArgTuple struct {
	Pos    Pos
	Values []string `"[" @Number ("," @Number)* "]"`
}

// Text renders the raw `<...>` contents back to surface text, used by the
// Host Rewriter to leave a malformed type argument unchanged verbatim.
func (c *CallTypeArg) Text() string {
	if c == nil {
		return ""
	}
	if c.Tuple != nil {
		return "[" + strings.Join(c.Tuple.Values, ", ") + "]"
	}
	return c.Type.Text()
}

// Literal is a numeric, string or boolean literal.
type Literal struct {
	Pos    Pos
	String *string `  @String`
	Number *string `| @Number`
	Bool   *string `| @("true" | "false")`
}
