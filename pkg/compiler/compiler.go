// Package compiler implements the Driver (spec.md §4.F): the top-level
// entry point that walks a parsed source unit, collects device-only
// helpers, invokes the Shader Function Emitter once per annotated
// function, invokes the Host Rewriter, and returns the rewritten host
// text.
package compiler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shaderscript/internal/cache"
	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/hostrewrite"
	"shaderscript/pkg/shaderfn"
	"shaderscript/pkg/structgen"
	"shaderscript/pkg/types"
)

// CompileSource parses src as a source unit and runs it through Compile —
// the convenience entry point cmd/shaderscriptc and most tests use.
func CompileSource(filename, src string, opts Options) (*Result, error) {
	p, err := ast.New()
	if err != nil {
		return nil, err
	}
	file, err := p.ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	return Compile(file, opts)
}

func newRunID() string { return uuid.NewString() }

// Options configures one Driver run.
type Options struct {
	// RuntimeModule is the import path for the runtime dispatch object
	// (spec.md §4.E step 1).
	RuntimeModule string
	// Memoize enables the Type Mapper's optional cache (spec.md §9).
	Memoize bool
}

// DefaultOptions returns sensible defaults for a standalone compilation.
func DefaultOptions() Options {
	return Options{RuntimeModule: "./runtime"}
}

// Result is the Driver's output for one source unit.
type Result struct {
	HostText    string
	Shaders     map[string]string // function name -> full emitted shader text
	Diagnostics []diag.Diagnostic
}

// Compile runs the full pipeline over an already-parsed source unit
// (spec.md §4.F steps 1-5).
func Compile(file *ast.File, opts Options) (*Result, error) {
	diags := diag.New(newRunID())

	var typeCache *cache.Cache
	if opts.Memoize {
		typeCache = cache.New()
		typeCache.RunID = diags.RunID
	}
	mapper := types.NewMapper(typeCache)
	structs := structgen.NewRegistry(file, mapper, diags)

	prelude := collectPrelude(file)

	deviceWGSL, kernelNames, deviceRoots, err := collectDeviceAndEntries(file, mapper, structs, diags)
	if err != nil {
		return nil, err
	}

	emitter := shaderfn.New(mapper, structs, diags, prelude, deviceRoots)
	shaders := make(map[string]string)

	for _, d := range file.Decls {
		if d.Func == nil {
			continue
		}
		ann, warnings := ast.ParseAnnotations(docText(d.Func.Doc))
		for _, w := range warnings {
			diags.Warnf(d.Func.Pos, "%s", w)
		}
		if ann.Kind != ast.KindKernel && ann.Kind != ast.KindVertex && ann.Kind != ast.KindFragment {
			continue
		}
		text, err := emitter.Entry(d.Func, ann, deviceWGSL)
		if err != nil {
			return nil, fmt.Errorf("missing-annotation: %w", err)
		}
		shaders[d.Func.Name] = text
	}

	hostText := hostrewrite.Rewrite(file, shaders, kernelNames, hostrewrite.Options{RuntimeModule: opts.RuntimeModule}, diags)

	if typeCache != nil {
		_ = typeCache.Save() // best-effort; an unset path is a no-op (see internal/cache)
	}

	return &Result{HostText: hostText, Shaders: shaders, Diagnostics: diags.Items()}, nil
}

// collectPrelude builds spec.md §4.D step 1's prelude: every top-level
// global constant whose initializer is a numeric literal, copied verbatim.
// Object/array initializers never qualify — the grammar already only
// accepts a bare @Number for ConstDecl.Value, so every parsed ConstDecl
// already satisfies this by construction.
func collectPrelude(file *ast.File) string {
	var b strings.Builder
	for _, d := range file.Decls {
		if d.Const == nil {
			continue
		}
		c := d.Const
		if c.Type != nil {
			fmt.Fprintf(&b, "const %s : %s = %s;\n", c.Name, c.Type.Text(), c.Value)
		} else {
			fmt.Fprintf(&b, "const %s = %s;\n", c.Name, c.Value)
		}
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// collectDeviceAndEntries emits every device function (spec.md §4.F step
// 2), concatenating them into deviceWGSL, and returns the set of kernel
// names the Host Rewriter needs for call-site rewriting, plus the
// record-type names drawn from every device function's parameter and
// return types — spec.md §4.B requires these in the struct closure of
// every shader in the unit, not just the types the shader's own
// annotated function happens to mention (testable scenario S6). An
// untyped device function is the Untyped-device fatal condition (spec.md
// §7): it aborts the enclosing unit's translation entirely.
func collectDeviceAndEntries(file *ast.File, mapper *types.Mapper, structs *structgen.Registry, diags *diag.Diagnostics) (deviceWGSL string, kernelNames map[string]bool, deviceRoots []string, err error) {
	emitter := shaderfn.New(mapper, structs, diags, "", nil)
	kernelNames = make(map[string]bool)

	var b strings.Builder
	for _, d := range file.Decls {
		if d.Func == nil {
			continue
		}
		ann, warnings := ast.ParseAnnotations(docText(d.Func.Doc))
		for _, w := range warnings {
			diags.Warnf(d.Func.Pos, "%s", w)
		}
		switch ann.Kind {
		case ast.KindDevice:
			text, derr := emitter.Device(d.Func)
			if derr != nil {
				return "", nil, nil, fmt.Errorf("untyped-device: %w", derr)
			}
			b.WriteString(text)
			b.WriteString("\n")
			deviceRoots = append(deviceRoots, shaderfn.DeviceRoots(d.Func)...)
		case ast.KindKernel:
			kernelNames[d.Func.Name] = true
		}
	}
	return b.String(), kernelNames, deviceRoots, nil
}

func docText(doc *string) string {
	if doc == nil {
		return ""
	}
	return *doc
}
