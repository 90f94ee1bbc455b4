// Package structgen implements the Struct Synthesizer (spec.md §4.B):
// given a record type visible in a source unit, it emits the corresponding
// target-language struct definition, and computes the transitive closure
// of structs reachable from a shader function's signature.
package structgen

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/types"
)

// Field is one synthesized struct field: name plus its mapped type.
type Field struct {
	Name       string
	MappedType string
}

// Struct is a struct descriptor (spec.md §3): a name plus an ordered list
// of fields, in source declaration order — order is observable because the
// host runtime packs uniform buffers using it.
type Struct struct {
	Name   string
	Fields []Field
}

// Text renders the struct as the target language's struct declaration,
// "one line per field, name : mapped-type, separated by commas,
// newline-terminated" (spec.md §4.B).
func (s *Struct) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", s.Name)
	for i, f := range s.Fields {
		sep := ","
		if i == len(s.Fields)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %s : %s%s\n", f.Name, f.MappedType, sep)
	}
	b.WriteString("}\n")
	return b.String()
}

// Std140Layout returns the std140-style size and alignment of the struct's
// fields. It is informational only: it raises no diagnostic and never
// alters emitted text. Grounded on the teacher's CalculateStructSize
// (pkg/codegen/gpu_types.go), supplementing spec.md per SPEC_FULL.md §3.
func (s *Struct) Std140Layout() (size, alignment int) {
	offset := 0
	maxAlign := 4
	for _, f := range s.Fields {
		fs, fa := fieldSizeAlign(f.MappedType)
		if fa > maxAlign {
			maxAlign = fa
		}
		if rem := offset % fa; rem != 0 {
			offset += fa - rem
		}
		offset += fs
	}
	if rem := offset % maxAlign; rem != 0 {
		offset += maxAlign - rem
	}
	return offset, maxAlign
}

func fieldSizeAlign(wgslType string) (size, align int) {
	switch {
	case wgslType == "f32", wgslType == "i32", wgslType == "u32", wgslType == "bool":
		return 4, 4
	case wgslType == "vec2<f32>", wgslType == "vec2<i32>", wgslType == "vec2<u32>":
		return 8, 8
	case wgslType == "vec3<f32>", wgslType == "vec3<i32>", wgslType == "vec3<u32>":
		return 12, 16 // stride 4, per spec.md §4.A's "3-vector ... stride 4 in host packing"
	case wgslType == "vec4<f32>", wgslType == "vec4<i32>", wgslType == "vec4<u32>":
		return 16, 16
	case wgslType == "mat2x2<f32>":
		return 16, 8
	case wgslType == "mat3x3<f32>":
		return 48, 16
	case wgslType == "mat4x4<f32>":
		return 64, 16
	default:
		return 4, 4 // struct or unrecognized type: conservative scalar-sized default
	}
}

// Registry resolves record type declarations (interface or object-literal
// type alias) visible in a source unit into Struct descriptors, and
// computes transitive closures over a function's signature.
type Registry struct {
	mapper *types.Mapper
	sink   diag.Sink
	decls  map[string]recordDecl
}

type recordDecl struct {
	name   string
	fields []*ast.FieldDecl
	pos    lexer.Position
}

// NewRegistry scans file for every interface and object-literal type-alias
// declaration, rejecting a non-object-literal alias with a diagnostic and
// no struct (spec.md §4.B, and the Non-literal-type-alias policy in §7).
func NewRegistry(file *ast.File, mapper *types.Mapper, sink diag.Sink) *Registry {
	r := &Registry{mapper: mapper, sink: sink, decls: make(map[string]recordDecl)}
	for _, d := range file.Decls {
		switch {
		case d.Interface != nil:
			r.decls[d.Interface.Name] = recordDecl{
				name:   d.Interface.Name,
				fields: d.Interface.Fields,
				pos:    d.Interface.Pos,
			}
		case d.TypeAlias != nil:
			if d.TypeAlias.Object != nil {
				r.decls[d.TypeAlias.Name] = recordDecl{
					name:   d.TypeAlias.Name,
					fields: d.TypeAlias.Object.Fields,
					pos:    d.TypeAlias.Pos,
				}
			} else if sink != nil {
				sink.Warnf(d.TypeAlias.Pos, "type alias %q does not resolve to an object literal; suppressing struct emission", d.TypeAlias.Name)
			}
		}
	}
	return r
}

// Resolve builds the Struct descriptor for name, or (nil, false) if name is
// not a known record type (e.g. it names a scalar/vector/builtin instead).
// A struct with zero fields is suppressed per the Empty-struct policy
// (spec.md §7) and also reported as (nil, false).
func (r *Registry) Resolve(name string) (*Struct, bool) {
	d, ok := r.decls[name]
	if !ok {
		return nil, false
	}
	if len(d.fields) == 0 {
		if r.sink != nil {
			r.sink.Warnf(d.pos, "struct %q has zero fields; suppressing emission", name)
		}
		return nil, false
	}
	s := &Struct{Name: d.name}
	for _, f := range d.fields {
		mapped := r.mapper.Map(f.Type.Text())
		if mapped.Warning != "" && r.sink != nil {
			r.sink.Warnf(f.Pos, "%s", mapped.Warning)
		}
		s.Fields = append(s.Fields, Field{Name: f.Name, MappedType: mapped.WGSL})
	}
	return s, true
}

// Closure computes the transitive closure of structs reachable from the
// given root type names (spec.md §4.B: "the types of the annotated
// function's parameters, the parameter and return types of any device
// function defined in the same unit"), each struct listed after the structs
// its fields depend on (post-order), with
// cycle detection per spec.md §9 ("a faithful implementation should detect
// a cycle in the struct closure and emit a diagnostic rather than loop
// forever").
func (r *Registry) Closure(roots []string) []*Struct {
	var out []*Struct
	seen := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		if visiting[name] {
			if r.sink != nil {
				r.sink.Warnf(lexer.Position{}, "cyclic struct reference involving %q; breaking cycle", name)
			}
			return
		}
		s, ok := r.Resolve(name)
		if !ok {
			return
		}
		visiting[name] = true
		for _, f := range s.Fields {
			if isStructType(f.MappedType) {
				visit(f.MappedType)
			}
		}
		delete(visiting, name)
		seen[name] = true
		out = append(out, s)
	}

	for _, root := range roots {
		visit(root)
	}
	return out
}

func isStructType(wgslType string) bool {
	if wgslType == "" {
		return false
	}
	r := []rune(wgslType)
	return r[0] >= 'A' && r[0] <= 'Z'
}
