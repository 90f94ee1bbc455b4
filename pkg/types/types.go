// Package types implements the Type Mapper (spec.md §4.A): a pure, total
// function from surface type text to target shader language type text.
// Grounded on the teacher's guixToWGSL table and MapGPUTypeToWGSL
// (pkg/codegen/gpu_types.go), adapted to the shaderscript type grammar.
package types

import (
	"fmt"
	"strings"
	"unicode"

	"shaderscript/internal/cache"
	"shaderscript/pkg/ast"
)

// Mapper wraps Map with an optional memoization cache. Mapping is pure, so
// the cache is purely an optimization (spec.md §9) — a nil *Mapper or one
// built with NewMapper(nil) behaves identically to calling Map directly.
type Mapper struct {
	cache *cache.Cache
}

// NewMapper builds a Mapper. Pass a non-nil c to memoize results across
// calls within one translation run; pass nil to skip memoization entirely.
func NewMapper(c *cache.Cache) *Mapper {
	return &Mapper{cache: c}
}

// Map behaves like the package-level Map function, consulting and
// populating the Mapper's cache (if any) first.
func (m *Mapper) Map(surface string) Result {
	if m == nil || m.cache == nil {
		return Map(surface)
	}
	if wgsl, warn, ok := m.cache.Lookup(surface); ok {
		return Result{WGSL: wgsl, Warning: warn}
	}
	r := Map(surface)
	m.cache.Store(surface, r.WGSL, r.Warning)
	return r
}

// scalarAndVector is the table of recognized non-generic surface forms.
// Mirrors the teacher's guixToWGSL map one-for-one where the surface name
// matches, with the vecNi/vecNu/matN forms spec.md §4.A adds on top.
var scalarAndVector = map[string]string{
	"number":  "f32",
	"boolean": "bool",
	"u32":     "u32",
	"i32":     "i32",
	"f32":     "f32",
	"bool":    "bool",

	"vec2": "vec2<f32>", "vec2f": "vec2<f32>",
	"vec3": "vec3<f32>", "vec3f": "vec3<f32>",
	"vec4": "vec4<f32>", "vec4f": "vec4<f32>",

	"vec2i": "vec2<i32>", "vec3i": "vec3<i32>", "vec4i": "vec4<i32>",
	"vec2u": "vec2<u32>", "vec3u": "vec3<u32>", "vec4u": "vec4<u32>",

	"mat2x2": "mat2x2<f32>", "mat2x2f": "mat2x2<f32>",
	"mat3x3": "mat3x3<f32>", "mat3x3f": "mat3x3<f32>",
	"mat4x4": "mat4x4<f32>", "mat4x4f": "mat4x4<f32>",
}

// numberWarning is the diagnostic text raised whenever "number" is mapped
// to f32 — device functions must reject this outright (spec.md §3
// invariant 2); kernel/vertex/fragment bodies only warn.
const numberWarning = `surface type "number" mapped to f32; a concrete width is required for device functions`

// Result is the outcome of mapping one surface type.
type Result struct {
	WGSL    string
	Warning string // empty when the mapping was unambiguous
}

// Map translates surface type text (as produced by ast.TypeRef.Text, or any
// equivalent textual form) into target shader language type text. Mapping
// is purely syntactic — spec.md §4.A is explicit that it never consults a
// type checker — and always succeeds: unknown forms degrade to f32 with a
// warning rather than failing.
func Map(surface string) Result {
	surface = strings.TrimSpace(surface)
	if surface == "" {
		return Result{WGSL: "f32", Warning: "empty surface type; defaulting to f32"}
	}

	if name, inner, ok := splitGeneric(surface); ok {
		return mapGeneric(name, inner)
	}

	if wgsl, ok := scalarAndVector[surface]; ok {
		if surface == "number" {
			return Result{WGSL: wgsl, Warning: numberWarning}
		}
		return Result{WGSL: wgsl}
	}

	if isStructName(surface) {
		return Result{WGSL: surface}
	}

	return Result{WGSL: "f32", Warning: fmt.Sprintf("unrecognized surface type %q; defaulting to f32", surface)}
}

// MapTypeRef is a convenience wrapper that accepts a parsed ast.TypeRef
// directly, recursing through its Generic chain the same way Map does for
// textual input, so callers holding an AST node needn't round-trip through
// text first.
func MapTypeRef(t *ast.TypeRef) Result {
	if t == nil {
		return Result{WGSL: "f32", Warning: "missing type; defaulting to f32"}
	}
	if t.Generic != nil {
		return mapGeneric(t.Name, t.Generic.Text())
	}
	return Map(t.Name)
}

// mapGeneric handles SharedArray<T> and Atomic<T>, recursing for nested
// generics such as SharedArray<Atomic<u32>> (spec.md §4.A: "nested generics
// ... must recurse").
func mapGeneric(name, inner string) Result {
	elem := Map(inner)
	switch name {
	case "SharedArray":
		return Result{WGSL: "array<" + elem.WGSL + ">", Warning: elem.Warning}
	case "Atomic":
		return Result{WGSL: "atomic<" + elem.WGSL + ">", Warning: elem.Warning}
	default:
		// An unrecognized generic wrapper: fall back to the element type
		// with a warning, rather than losing the inner mapping entirely.
		w := fmt.Sprintf("unrecognized generic wrapper %q; using inner type", name)
		if elem.Warning != "" {
			w = elem.Warning + "; " + w
		}
		return Result{WGSL: elem.WGSL, Warning: w}
	}
}

// splitGeneric recognizes "Name<Inner>" textually, per spec.md §4.A's
// requirement that generics are matched as text, not resolved semantically.
func splitGeneric(s string) (name, inner string, ok bool) {
	open := strings.IndexByte(s, '<')
	if open < 0 || !strings.HasSuffix(s, ">") {
		return "", "", false
	}
	return strings.TrimSpace(s[:open]), strings.TrimSpace(s[open+1 : len(s)-1]), true
}

// IsArray reports whether a mapped WGSL type is a storage array produced
// from SharedArray<T> — the Shader Function Emitter uses this to choose
// between a uniform and a storage,read_write binding (spec.md §4.D).
func IsArray(wgslType string) bool {
	return strings.HasPrefix(wgslType, "array<")
}

// isStructName implements "any identifier starting with an uppercase
// letter, not in the above [table], is treated as a struct name, mapped to
// itself" (spec.md §4.A).
func isStructName(s string) bool {
	r := []rune(s)
	if len(r) == 0 {
		return false
	}
	if !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_') {
			return false
		}
	}
	return true
}
