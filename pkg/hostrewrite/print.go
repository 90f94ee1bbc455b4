package hostrewrite

import (
	"fmt"
	"strings"

	"shaderscript/pkg/ast"
)

func indent(level int) string { return strings.Repeat("    ", level) }

// stmt prints a statement close to its original host syntax — unlike
// pkg/translate, nothing here is lowered or stripped: ternaries keep
// `? :`, `as T` assertions are kept, do-while keeps its native form. The
// only transformation applied at this level is the call-site rewrite
// (spec.md §4.E step 2), performed inside expr/callSuffix.
func (p *printer) stmt(s *ast.Stmt, level int) string {
	pad := indent(level)
	switch {
	case s.VarDecl != nil:
		return pad + p.varDecl(s.VarDecl) + "\n"
	case s.If != nil:
		return p.ifStmt(s.If, level)
	case s.For != nil:
		return p.forStmt(s.For, level)
	case s.While != nil:
		return fmt.Sprintf("%swhile (%s) {\n%s%s}\n", pad, p.expr(s.While.Cond), p.block(s.While.Body, level+1), pad)
	case s.DoWhile != nil:
		return fmt.Sprintf("%sdo {\n%s%s} while (%s);\n", pad, p.block(s.DoWhile.Body, level+1), pad, p.expr(s.DoWhile.Cond))
	case s.Switch != nil:
		return p.switchStmt(s.Switch, level)
	case s.Break != nil:
		return pad + "break;\n"
	case s.Continue != nil:
		return pad + "continue;\n"
	case s.Return != nil:
		if s.Return.Value == nil {
			return pad + "return;\n"
		}
		return pad + "return " + p.expr(s.Return.Value) + ";\n"
	case s.Assign != nil:
		return pad + p.assign(s.Assign) + "\n"
	case s.Postfix != nil:
		return pad + s.Postfix.Target.Text() + s.Postfix.Op + ";\n"
	case s.ExprStmt != nil:
		prefix := ""
		if s.ExprStmt.Await {
			prefix = "await "
		}
		return pad + prefix + p.expr(s.ExprStmt.Call) + ";\n"
	default:
		return pad + "/* Unsupported node: statement */\n"
	}
}

func (p *printer) block(b *ast.Block, level int) string {
	var buf strings.Builder
	for _, s := range b.Statements {
		buf.WriteString(p.stmt(s, level))
	}
	return buf.String()
}

func (p *printer) varDecl(v *ast.VarDeclStmt) string {
	var b strings.Builder
	b.WriteString(v.Kind)
	b.WriteString(" ")
	b.WriteString(v.Name)
	if v.Type != nil {
		fmt.Fprintf(&b, ": %s", v.Type.Text())
	}
	if v.Init != nil {
		fmt.Fprintf(&b, " = %s", p.expr(v.Init))
	}
	b.WriteString(";")
	return b.String()
}

func (p *printer) assign(a *ast.AssignStmt) string {
	target := a.Target.Text()
	if a.Index != nil {
		target += "[" + p.expr(a.Index) + "]"
	}
	return fmt.Sprintf("%s %s %s;", target, a.Op, p.expr(a.Value))
}

func (p *printer) ifStmt(s *ast.IfStmt, level int) string {
	pad := indent(level)
	out := fmt.Sprintf("%sif (%s) {\n%s%s}", pad, p.expr(s.Cond), p.block(s.Then, level+1), pad)
	if s.Else != nil {
		switch {
		case s.Else.If != nil:
			out += " else " + strings.TrimPrefix(p.ifStmt(s.Else.If, level), pad)
		case s.Else.Block != nil:
			out += fmt.Sprintf(" else {\n%s%s}", p.block(s.Else.Block, level+1), pad)
		}
	}
	return out + "\n"
}

func (p *printer) forStmt(s *ast.ForStmt, level int) string {
	pad := indent(level)
	init := fmt.Sprintf("%s %s", s.Init.Kind, s.Init.Name)
	if s.Init.Type != nil {
		init += ": " + s.Init.Type.Text()
	}
	if s.Init.Init != nil {
		init += " = " + p.expr(s.Init.Init)
	}
	post := s.PostTarget.Text() + " " + s.PostOp
	if s.PostValue != nil {
		post += " " + p.expr(s.PostValue)
	}
	return fmt.Sprintf("%sfor (%s; %s; %s) {\n%s%s}\n", pad, init, p.expr(s.Cond), post, p.block(s.Body, level+1), pad)
}

func (p *printer) switchStmt(s *ast.SwitchStmt, level int) string {
	pad := indent(level)
	inner := indent(level + 1)
	var b strings.Builder
	fmt.Fprintf(&b, "%sswitch (%s) {\n", pad, p.expr(s.Tag))
	for _, c := range s.Cases {
		if c.IsDefault {
			fmt.Fprintf(&b, "%sdefault:\n", inner)
		} else {
			fmt.Fprintf(&b, "%scase %s:\n", inner, p.expr(c.Value))
		}
		for _, cs := range c.Body {
			b.WriteString(p.stmt(cs, level+2))
		}
	}
	fmt.Fprintf(&b, "%s}\n", pad)
	return b.String()
}

func (p *printer) expr(e *ast.Expr) string {
	if e == nil {
		return ""
	}
	if e.IsTernary() {
		return fmt.Sprintf("%s ? %s : %s", p.orExpr(e.Cond), p.expr(e.Then), p.expr(e.Else))
	}
	return p.orExpr(e.Cond)
}

func (p *printer) orExpr(o *ast.OrExpr) string {
	out := p.unary(o.Left)
	for _, op := range o.Ops {
		out += fmt.Sprintf(" %s %s", op.Op, p.unary(op.Right))
	}
	return out
}

func (p *printer) unary(u *ast.UnaryExpr) string {
	inner := p.asExpr(u.Operand)
	if u.Op != "" {
		return u.Op + inner
	}
	return inner
}

func (p *printer) asExpr(a *ast.AsExpr) string {
	out := p.primary(a.Primary)
	if a.Await {
		out = "await " + out
	}
	if a.Postfix != "" {
		out += a.Postfix
	}
	if a.AsType != nil {
		out += " as " + a.AsType.Text()
	}
	return out
}

func (p *printer) primary(pr *ast.Primary) string {
	switch {
	case pr.Lit != nil:
		return p.literal(pr.Lit)
	case pr.Paren != nil:
		return "(" + p.expr(pr.Paren) + ")"
	case pr.Atom != nil:
		return p.atom(pr.Atom)
	default:
		return "/* Unsupported node: expression */"
	}
}

func (p *printer) literal(l *ast.Literal) string {
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

func (p *printer) atom(a *ast.AtomExpr) string {
	out := a.Base
	for _, suf := range a.Suffixes {
		switch {
		case suf.Field != nil:
			out += "." + *suf.Field
		case suf.Index != nil:
			out += "[" + p.expr(suf.Index) + "]"
		case suf.Call != nil:
			out += p.callSuffix(a.Base, suf.Call)
		}
	}
	return out
}

// callSuffix implements spec.md §4.E step 2: for a call to a kernel
// function carrying a single numeric-literal type-argument tuple, strip
// the type argument and append it as a trailing array argument. A
// non-tuple type argument at such a call site is the Malformed-workgroup-
// count condition (spec.md §7): report it and leave the call-site
// unchanged, original `<...>` syntax included.
func (p *printer) callSuffix(callee string, c *ast.CallSuffix) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = p.expr(a)
	}

	if c.TypeArgs == nil {
		return "(" + strings.Join(args, ", ") + ")"
	}

	if !p.kernelNames[callee] {
		return fmt.Sprintf("<%s>(%s)", c.TypeArgs.Text(), strings.Join(args, ", "))
	}

	if c.TypeArgs.Tuple == nil {
		if p.sink != nil {
			p.sink.Warnf(c.Pos, "call-site type argument on kernel %q is not a numeric tuple; leaving call-site unchanged", callee)
		}
		return fmt.Sprintf("<%s>(%s)", c.TypeArgs.Text(), strings.Join(args, ", "))
	}

	tupleText := "[" + strings.Join(c.TypeArgs.Tuple.Values, ", ") + "]"
	allArgs := append(args, tupleText)
	return "(" + strings.Join(allArgs, ", ") + ")"
}
