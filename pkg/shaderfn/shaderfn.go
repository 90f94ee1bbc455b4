// Package shaderfn implements the Shader Function Emitter (spec.md §4.D):
// it orchestrates the Type Mapper, Struct Synthesizer and Translator to
// produce a full shader entry point from one annotated function.
package shaderfn

import (
	"fmt"
	"strconv"
	"strings"

	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/structgen"
	"shaderscript/pkg/translate"
	"shaderscript/pkg/types"
)

const defaultWorkgroupSize = 64

// Param is one resolved parameter descriptor (spec.md §3).
type Param struct {
	Name         string
	SurfaceType  string
	MappedType   string
	BindingKind  string // "uniform" or "storage-read-write"
	BindingIndex int
}

// Emitter produces shader text for annotated and device functions.
type Emitter struct {
	mapper      *types.Mapper
	structs     *structgen.Registry
	sink        diag.Sink
	prelude     string
	deviceRoots []string
}

// New builds an Emitter. prelude is the concatenated global-constant text
// (spec.md §4.D step 1), computed once per source unit by the Driver.
// deviceRoots are the record-type names drawn from every device function's
// parameter and return types in the same unit — spec.md §4.B requires the
// struct closure to include these alongside the annotated function's own
// signature, since a device helper's struct-typed return (say) may never be
// named anywhere in the calling kernel's own parameter list even though its
// definition text must still appear ahead of any code that uses it.
func New(mapper *types.Mapper, structs *structgen.Registry, sink diag.Sink, prelude string, deviceRoots []string) *Emitter {
	return &Emitter{mapper: mapper, structs: structs, sink: sink, prelude: prelude, deviceRoots: deviceRoots}
}

// Params resolves a function's parameter descriptors, assigning dense
// binding indices over the declared parameter list (spec.md §3: "the
// 0-based position in the parameter list, excluding the reserved
// workgroup-count parameter" — the reserved parameter is a Host Rewriter
// concern added after shader emission, so no exclusion is needed here).
func (e *Emitter) Params(params []*ast.Param) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		mapped := e.mapper.Map(p.Type.Text())
		if mapped.Warning != "" && e.sink != nil {
			e.sink.Warnf(p.Pos, "%s", mapped.Warning)
		}
		kind := "uniform"
		if types.IsArray(mapped.WGSL) {
			kind = "storage-read-write"
		}
		out[i] = Param{
			Name:         p.Name,
			SurfaceType:  p.Type.Text(),
			MappedType:   mapped.WGSL,
			BindingKind:  kind,
			BindingIndex: i,
		}
	}
	return out
}

// bindingRoots extracts the record-type names referenced by a parameter
// list, for the struct-closure computation (spec.md §4.B).
func bindingRoots(params []*ast.Param, extra ...string) []string {
	var roots []string
	for _, p := range params {
		roots = append(roots, p.Type.Name)
		if p.Type.Generic != nil {
			roots = append(roots, p.Type.Generic.Name)
		}
	}
	roots = append(roots, extra...)
	return roots
}

// DeviceRoots extracts the record-type names referenced by one device
// function's parameter and return types, for the Driver to collect across
// every device function in a unit and pass to New as deviceRoots (spec.md
// §4.B).
func DeviceRoots(fn *ast.FuncDecl) []string {
	var returnRoot string
	if fn.ReturnType != nil {
		returnRoot = fn.ReturnType.Name
	}
	return bindingRoots(fn.Params, returnRoot)
}

// Entry emits a full kernel/vertex/fragment shader (spec.md §4.D steps
// 1-5). deviceWGSL is the already-emitted, concatenated device-function
// text to prepend (spec.md invariant 5; the Driver supplies it).
func (e *Emitter) Entry(fn *ast.FuncDecl, ann ast.Annotation, deviceWGSL string) (string, error) {
	if ann.Kind != ast.KindKernel && ann.Kind != ast.KindVertex && ann.Kind != ast.KindFragment {
		return "", fmt.Errorf("function %q has no kernel/vertex/fragment annotation", fn.Name)
	}

	params := e.Params(fn.Params)

	var returnRoot string
	if fn.ReturnType != nil {
		returnRoot = fn.ReturnType.Name
	}
	roots := bindingRoots(fn.Params, returnRoot)
	roots = append(roots, e.deviceRoots...)
	structs := e.structs.Closure(roots)

	body := translate.New(e.mapper, e.sink).Body(fn.Body)

	var b strings.Builder
	b.WriteString(deviceWGSL)
	if e.prelude != "" {
		b.WriteString(e.prelude)
	}
	for _, s := range structs {
		b.WriteString(s.Text())
		b.WriteString("\n")
	}
	for _, p := range params {
		b.WriteString(bindingDecl(p))
	}
	b.WriteString("\n")

	switch ann.Kind {
	case ast.KindKernel:
		size := ann.WorkgroupSize
		if len(size) == 0 {
			size = []int{defaultWorkgroupSize}
		}
		fmt.Fprintf(&b, "@compute @workgroup_size(%s)\n", joinInts(size))
		fmt.Fprintf(&b, "fn %s(@builtin(global_invocation_id) global_invocation_id : vec3<u32>) {\n", fn.Name)
	case ast.KindVertex:
		fmt.Fprintf(&b, "@vertex\n")
		fmt.Fprintf(&b, "fn %s(@builtin(vertex_index) vertex_index : u32) -> @builtin(position) vec4<f32> {\n", fn.Name)
	case ast.KindFragment:
		fmt.Fprintf(&b, "@fragment\n")
		fmt.Fprintf(&b, "fn %s(@builtin(position) pos : vec4<f32>) -> @location(0) vec4<f32> {\n", fn.Name)
	}
	b.WriteString(body)
	b.WriteString("}\n")

	return b.String(), nil
}

// Device emits a device-function helper (spec.md §4.D's "parallel path").
// Array-typed parameters are wrapped as a storage pointer with read-write
// access, since a device callee may write through an array parameter.
// number is rejected on both parameters and return per spec.md invariant 2.
func (e *Emitter) Device(fn *ast.FuncDecl) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s(", fn.Name)
	for i, p := range fn.Params {
		if p.Type.Text() == "number" {
			return "", fmt.Errorf("device function %q parameter %q is untyped (\"number\"); a concrete width is required", fn.Name, p.Name)
		}
		mapped := e.mapper.Map(p.Type.Text())
		if mapped.Warning != "" && e.sink != nil {
			e.sink.Warnf(p.Pos, "%s", mapped.Warning)
		}
		wgslType := mapped.WGSL
		if types.IsArray(wgslType) {
			wgslType = "ptr<storage, " + wgslType + ", read_write>"
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s : %s", p.Name, wgslType)
	}
	b.WriteString(")")

	if fn.ReturnType != nil && fn.ReturnType.Name != "void" {
		if fn.ReturnType.Text() == "number" {
			return "", fmt.Errorf("device function %q return type is untyped (\"number\"); a concrete width is required", fn.Name)
		}
		mapped := e.mapper.Map(fn.ReturnType.Text())
		if mapped.Warning != "" && e.sink != nil {
			e.sink.Warnf(fn.Pos, "%s", mapped.Warning)
		}
		fmt.Fprintf(&b, " -> %s", mapped.WGSL)
	}

	b.WriteString(" {\n")
	b.WriteString(translate.New(e.mapper, e.sink).Body(fn.Body))
	b.WriteString("}\n")
	return b.String(), nil
}

// bindingDecl renders one @group(0) @binding(i) declaration. Binding kind
// is chosen from the mapped type: scalars/vectors/matrices/structs are
// uniform, array types (from SharedArray<T>) are storage read_write
// (spec.md §4.D step 3, tested by property 2).
func bindingDecl(p Param) string {
	switch p.BindingKind {
	case "storage-read-write":
		return fmt.Sprintf("@group(0) @binding(%d) var<storage, read_write> %s : %s;\n", p.BindingIndex, p.Name, p.MappedType)
	default:
		return fmt.Sprintf("@group(0) @binding(%d) var<uniform> %s : %s;\n", p.BindingIndex, p.Name, p.MappedType)
	}
}

func joinInts(vals []int) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ", ")
}
