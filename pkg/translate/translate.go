// Package translate implements the Expression/Statement Translator
// (spec.md §4.C): a recursive descent over the body AST of a single
// annotated or device function, rendering every supported syntactic form
// into target shader language text.
//
// Per spec.md §9's design note ("an implementer should represent the
// translator as a dispatch over node-kind tags... rather than as a class
// hierarchy"), this package dispatches by type-switching over which field
// of each alternation struct is populated, rather than through a Visitor.
package translate

import (
	"fmt"
	"strings"

	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/types"
)

// Translator holds the dependencies the translation of one function body
// needs: the Type Mapper (for declared-type annotations) and a diagnostic
// sink for the Unknown-type and Unknown-node warnings (spec.md §7).
type Translator struct {
	mapper *types.Mapper
	sink   diag.Sink
}

// New builds a Translator.
func New(mapper *types.Mapper, sink diag.Sink) *Translator {
	return &Translator{mapper: mapper, sink: sink}
}

// Body renders a function body's statements, one per line, indented one
// level — the caller (pkg/shaderfn) supplies the enclosing braces.
func (t *Translator) Body(b *ast.Block) string {
	var buf strings.Builder
	for _, s := range b.Statements {
		buf.WriteString(t.stmt(s, 1))
	}
	return buf.String()
}

func indent(level int) string { return strings.Repeat("    ", level) }

func (t *Translator) stmt(s *ast.Stmt, level int) string {
	pad := indent(level)
	switch {
	case s.VarDecl != nil:
		return pad + t.varDecl(s.VarDecl) + "\n"
	case s.If != nil:
		return t.ifStmt(s.If, level)
	case s.For != nil:
		return t.forStmt(s.For, level)
	case s.While != nil:
		return fmt.Sprintf("%swhile (%s) {\n%s%s}\n", pad, t.expr(s.While.Cond), t.Body(s.While.Body), pad)
	case s.DoWhile != nil:
		return t.doWhile(s.DoWhile, level)
	case s.Switch != nil:
		return t.switchStmt(s.Switch, level)
	case s.Break != nil:
		return pad + "break;\n"
	case s.Continue != nil:
		return pad + "continue;\n"
	case s.Return != nil:
		if s.Return.Value == nil {
			return pad + "return;\n"
		}
		return pad + "return " + t.expr(s.Return.Value) + ";\n"
	case s.Assign != nil:
		return pad + t.assign(s.Assign) + "\n"
	case s.Postfix != nil:
		return pad + s.Postfix.Target.Text() + s.Postfix.Op + ";\n"
	case s.ExprStmt != nil:
		return pad + t.expr(s.ExprStmt.Call) + ";\n"
	default:
		if t.sink != nil {
			t.sink.Warnf(s.Pos, "unsupported statement form")
		}
		return pad + "/* Unsupported node: statement */\n"
	}
}

// varDecl renders §4.C's variable-declaration rule: immutable bindings as
// let, mutable as var; no initializer means no "= ..." clause at all
// (important for uninitialized struct locals).
func (t *Translator) varDecl(v *ast.VarDeclStmt) string {
	keyword := "var"
	if !v.Mutable() {
		keyword = "let"
	}
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(v.Name)
	if v.Type != nil {
		mapped := t.mapper.Map(v.Type.Text())
		if mapped.Warning != "" && t.sink != nil {
			t.sink.Warnf(v.Pos, "%s", mapped.Warning)
		}
		b.WriteString(" : ")
		b.WriteString(mapped.WGSL)
	}
	if v.Init != nil {
		b.WriteString(" = ")
		b.WriteString(t.expr(v.Init))
	}
	b.WriteString(";")
	return b.String()
}

// forInit renders a for-loop's initializer clause, stripped of any
// trailing separator since ForStmt supplies the semicolons between clauses
// itself (spec.md §4.C: "the initializer's trailing semicolon, if any, is
// stripped before re-emission inside the loop header").
func (t *Translator) forInit(v *ast.ForInit) string {
	keyword := "var"
	if !v.Mutable() {
		keyword = "let"
	}
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(v.Name)
	if v.Type != nil {
		mapped := t.mapper.Map(v.Type.Text())
		if mapped.Warning != "" && t.sink != nil {
			t.sink.Warnf(v.Pos, "%s", mapped.Warning)
		}
		b.WriteString(" : ")
		b.WriteString(mapped.WGSL)
	}
	if v.Init != nil {
		b.WriteString(" = ")
		b.WriteString(t.expr(v.Init))
	}
	return b.String()
}

func (t *Translator) assign(a *ast.AssignStmt) string {
	target := a.Target.Text()
	if a.Index != nil {
		target += "[" + t.expr(a.Index) + "]"
	}
	return fmt.Sprintf("%s %s %s;", target, a.Op, t.expr(a.Value))
}

func (t *Translator) ifStmt(s *ast.IfStmt, level int) string {
	pad := indent(level)
	out := fmt.Sprintf("%sif (%s) {\n%s%s}", pad, t.expr(s.Cond), t.Body(s.Then), pad)
	if s.Else != nil {
		switch {
		case s.Else.If != nil:
			out += " else " + strings.TrimPrefix(t.ifStmt(s.Else.If, level), pad)
		case s.Else.Block != nil:
			out += fmt.Sprintf(" else {\n%s%s}", t.Body(s.Else.Block), pad)
		}
	}
	return out + "\n"
}

func (t *Translator) forStmt(s *ast.ForStmt, level int) string {
	pad := indent(level)
	init := t.forInit(s.Init)
	cond := t.expr(s.Cond)
	post := s.PostTarget.Text() + " " + s.PostOp
	if s.PostValue != nil {
		post += " " + t.expr(s.PostValue)
	}
	return fmt.Sprintf("%sfor (%s; %s; %s) {\n%s%s}\n", pad, init, cond, post, t.Body(s.Body), pad)
}

// doWhile lowers `do { body } while (cond);` to the target language's
// `loop { body; if (!(cond)) { break; } }` form (spec.md §4.C), since the
// target language has no native do-while (tested by scenario S5).
func (t *Translator) doWhile(s *ast.DoWhileStmt, level int) string {
	pad := indent(level)
	inner := indent(level + 1)
	return fmt.Sprintf(
		"%sloop {\n%s%sif (!(%s)) { break; }\n%s}\n",
		pad, t.Body(s.Body), inner, t.expr(s.Cond), pad,
	)
}

func (t *Translator) switchStmt(s *ast.SwitchStmt, level int) string {
	pad := indent(level)
	inner := indent(level + 1)
	var b strings.Builder
	fmt.Fprintf(&b, "%sswitch (%s) {\n", pad, t.expr(s.Tag))
	for _, c := range s.Cases {
		if c.IsDefault {
			fmt.Fprintf(&b, "%sdefault: {\n", inner)
		} else {
			fmt.Fprintf(&b, "%scase %s: {\n", inner, t.expr(c.Value))
		}
		for _, cs := range c.Body {
			b.WriteString(t.stmt(cs, level+2))
		}
		fmt.Fprintf(&b, "%s}\n", inner)
	}
	fmt.Fprintf(&b, "%s}\n", pad)
	return b.String()
}

// expr dispatches on Expr, rendering the ternary form as
// select(whenFalse, whenTrue, condition) — operand order matters, per
// spec.md §4.C and testable property 6.
func (t *Translator) expr(e *ast.Expr) string {
	if e == nil {
		return ""
	}
	if e.IsTernary() {
		cond := t.orExpr(e.Cond)
		whenTrue := t.expr(e.Then)
		whenFalse := t.expr(e.Else)
		return fmt.Sprintf("select(%s, %s, %s)", whenFalse, whenTrue, cond)
	}
	return t.orExpr(e.Cond)
}

// orExpr renders a flat left-to-right binary-operator chain, preserving
// the source's operator sequence and textual operators (spec.md §4.C).
func (t *Translator) orExpr(o *ast.OrExpr) string {
	out := t.unary(o.Left)
	for _, op := range o.Ops {
		out += fmt.Sprintf(" %s %s", op.Op, t.unary(op.Right))
	}
	return out
}

func (t *Translator) unary(u *ast.UnaryExpr) string {
	inner := t.asExpr(u.Operand)
	if u.Op != "" {
		return u.Op + inner
	}
	return inner
}

// asExpr strips `as T` type assertions entirely — "only the inner
// expression is emitted" (spec.md §4.C) — and preserves postfix ++/--.
// A leading `await` (host-side async dispatch syntax) has no analog in
// shader text and is likewise dropped.
func (t *Translator) asExpr(a *ast.AsExpr) string {
	out := t.primary(a.Primary)
	if a.Postfix != "" {
		out += a.Postfix
	}
	return out
}

func (t *Translator) primary(p *ast.Primary) string {
	switch {
	case p.Lit != nil:
		return t.literal(p.Lit)
	case p.Paren != nil:
		return "(" + t.expr(p.Paren) + ")"
	case p.Atom != nil:
		return t.atom(p.Atom)
	default:
		if t.sink != nil {
			t.sink.Warnf(p.Pos, "unsupported expression form")
		}
		return "/* Unsupported node: expression */"
	}
}

func (t *Translator) literal(l *ast.Literal) string {
	switch {
	case l.String != nil:
		return *l.String
	case l.Number != nil:
		return *l.Number
	case l.Bool != nil:
		return *l.Bool
	default:
		return ""
	}
}

// atom renders an identifier chain: a base identifier followed by any
// number of .field, [index] and (args) suffixes. It implements three
// special cases from spec.md §4.C:
//   - global_id is normalized to global_invocation_id, unconditionally
//     (spec.md §9's open question resolves in favor of the simpler,
//     unconditional rewrite).
//   - a call whose callee name begins with "atomic" has its first
//     argument address-of-prefixed with &, because atomic intrinsics take
//     pointers in the target language.
//   - element access a[i] and property access a.f (including swizzles)
//     are both preserved as written.
func (t *Translator) atom(a *ast.AtomExpr) string {
	base := a.Base
	if base == "global_id" {
		base = "global_invocation_id"
	}

	out := base
	for _, suf := range a.Suffixes {
		switch {
		case suf.Field != nil:
			out += "." + *suf.Field
		case suf.Index != nil:
			out += "[" + t.expr(suf.Index) + "]"
		case suf.Call != nil:
			out += t.callSuffix(out, suf.Call)
		}
	}
	return out
}

func (t *Translator) callSuffix(callee string, c *ast.CallSuffix) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = t.expr(a)
	}
	if strings.HasPrefix(callee, "atomic") && len(args) > 0 {
		args[0] = "&" + args[0]
	}
	return "(" + strings.Join(args, ", ") + ")"
}
