// Package hostrewrite implements the Host Rewriter (spec.md §4.E): the
// transformation of the host source that ties each annotated function to a
// runtime dispatch primitive. The transformations are applied by the
// printer as it serializes the host AST back to source text; the AST
// itself is not modified.
//
// This implementation produces output text by walking the AST fresh
// (see Options and Rewrite) rather than splicing byte ranges of the
// original source buffer. spec.md §4.E's "reverse declaration order"
// requirement exists to keep byte-offset-based splicing from shifting
// later functions' positions as earlier constants are hoisted in front of
// them; a fresh top-to-bottom re-serialization has no such hazard, so
// declarations are processed in forward (source) order here — the visible
// output ordering is identical either way. See DESIGN.md.
package hostrewrite

import (
	"fmt"
	"strings"

	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
)

// Options configures the rewrite.
type Options struct {
	// RuntimeModule is the import path injected for the runtime symbol,
	// e.g. "./runtime" (spec.md §4.E step 1).
	RuntimeModule string
}

// ShaderText maps an annotated function's name to its fully emitted shader
// program (pkg/shaderfn's output, concatenated with device text by the
// Driver).
type ShaderText map[string]string

// Rewrite applies all four transformations spec.md §4.E lists while
// printing, and returns the unit's serialized host text. file is not
// modified.
func Rewrite(file *ast.File, shaders ShaderText, kernelNames map[string]bool, opts Options, sink diag.Sink) string {
	p := &printer{shaders: shaders, kernelNames: kernelNames, sink: sink}

	var b strings.Builder
	if !hasRuntimeImport(file, opts.RuntimeModule) {
		fmt.Fprintf(&b, "import { runtime } from %q;\n\n", opts.RuntimeModule)
	}

	for _, d := range file.Decls {
		b.WriteString(p.decl(d))
	}
	return b.String()
}

func hasRuntimeImport(file *ast.File, module string) bool {
	for _, d := range file.Decls {
		if d.Import != nil && d.Import.Path == module {
			return true
		}
	}
	return false
}

type printer struct {
	shaders     ShaderText
	kernelNames map[string]bool
	sink        diag.Sink
}

func (p *printer) decl(d *ast.Decl) string {
	switch {
	case d.Import != nil:
		return fmt.Sprintf("import { %s } from %q;\n", strings.Join(d.Import.Names, ", "), d.Import.Path)
	case d.Const != nil:
		return p.constDecl(d.Const)
	case d.Interface != nil:
		return p.interfaceDecl(d.Interface)
	case d.TypeAlias != nil:
		return p.typeAliasDecl(d.TypeAlias)
	case d.Func != nil:
		return p.funcDecl(d.Func)
	default:
		return ""
	}
}

func (p *printer) constDecl(c *ast.ConstDecl) string {
	if c.Type != nil {
		return fmt.Sprintf("const %s: %s = %s;\n", c.Name, c.Type.Text(), c.Value)
	}
	return fmt.Sprintf("const %s = %s;\n", c.Name, c.Value)
}

func (p *printer) interfaceDecl(i *ast.InterfaceDecl) string {
	var b strings.Builder
	fmt.Fprintf(&b, "interface %s {\n", i.Name)
	for _, f := range i.Fields {
		fmt.Fprintf(&b, "    %s: %s;\n", f.Name, f.Type.Text())
	}
	b.WriteString("}\n")
	return b.String()
}

func (p *printer) typeAliasDecl(t *ast.TypeAliasDecl) string {
	if t.Object != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "type %s = {\n", t.Name)
		for _, f := range t.Object.Fields {
			fmt.Fprintf(&b, "    %s: %s;\n", f.Name, f.Type.Text())
		}
		b.WriteString("};\n")
		return b.String()
	}
	return fmt.Sprintf("type %s = %s;\n", t.Name, t.Other.Text())
}

// funcDecl dispatches a top-level function: a kernel/vertex/fragment
// function becomes the shader-dispatch wrapper (spec.md §4.E step 3); any
// other function (including device functions, which "are left in the host
// output... but their text is also collected by the Driver", spec.md §4.E
// step 4) is printed close to verbatim, with call-site rewriting applied
// to any kernel invocations found in its body.
func (p *printer) funcDecl(fn *ast.FuncDecl) string {
	ann, _ := ast.ParseAnnotations(docText(fn.Doc))

	if ann.Kind == ast.KindKernel || ann.Kind == ast.KindVertex || ann.Kind == ast.KindFragment {
		return p.shaderWrapper(fn, ann)
	}
	return p.plainFunc(fn)
}

func docText(doc *string) string {
	if doc == nil {
		return ""
	}
	return *doc
}

// shaderWrapper renders spec.md §4.E step 3: hoists the `<fn>_wgsl`
// constant, relaxes parameters to `any`, appends an optional
// workgroup_count parameter, and replaces the body with the dispatch call
// (kernel) or the {code, entryPoint} object (vertex/fragment).
func (p *printer) shaderWrapper(fn *ast.FuncDecl, ann ast.Annotation) string {
	var b strings.Builder

	wgsl := p.shaders[fn.Name]
	fmt.Fprintf(&b, "const %s_wgsl = %s;\n\n", fn.Name, backtickString(wgsl))

	names := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		names[i] = param.Name
	}

	params := anyParamList(names)
	if params != "" {
		params += ", "
	}
	fmt.Fprintf(&b, "export async function %s(%sworkgroup_count?: [number, number, number]) {\n",
		fn.Name, params)

	switch ann.Kind {
	case ast.KindKernel:
		fmt.Fprintf(&b, "    return runtime.dispatch(%s_wgsl, %q, [%s], workgroup_count);\n",
			fn.Name, fn.Name, strings.Join(names, ", "))
	case ast.KindVertex, ast.KindFragment:
		fmt.Fprintf(&b, "    return { code: %s_wgsl, entryPoint: %q };\n", fn.Name, fn.Name)
	}
	b.WriteString("}\n\n")
	return b.String()
}

func anyParamList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ": any"
	}
	return strings.Join(parts, ", ")
}

func backtickString(s string) string {
	// The shader text may itself contain backticks in comments; none of
	// the emitter's own output does, but guard defensively.
	escaped := strings.ReplaceAll(s, "`", "\\`")
	return "`" + escaped + "`"
}

func (p *printer) plainFunc(fn *ast.FuncDecl) string {
	var b strings.Builder
	if fn.Doc != nil {
		b.WriteString(*fn.Doc)
		b.WriteString("\n")
	}
	if fn.Export {
		b.WriteString("export ")
	}
	if fn.Async {
		b.WriteString("async ")
	}
	fmt.Fprintf(&b, "function %s(%s)", fn.Name, p.paramList(fn.Params))
	if fn.ReturnType != nil {
		fmt.Fprintf(&b, ": %s", fn.ReturnType.Text())
	}
	b.WriteString(" {\n")
	for _, s := range fn.Body.Statements {
		b.WriteString(p.stmt(s, 1))
	}
	b.WriteString("}\n\n")
	return b.String()
}

func (p *printer) paramList(params []*ast.Param) string {
	parts := make([]string, len(params))
	for i, pr := range params {
		parts[i] = fmt.Sprintf("%s: %s", pr.Name, pr.Type.Text())
	}
	return strings.Join(parts, ", ")
}
