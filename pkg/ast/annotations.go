package ast

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies an annotated function. Exactly one of KindKernel,
// KindVertex, KindFragment or KindDevice applies to a given function
// (spec invariant 1); KindNone marks a function the Shader Function Emitter
// must reject.
type Kind int

const (
	KindNone Kind = iota
	KindKernel
	KindVertex
	KindFragment
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindKernel:
		return "kernel"
	case KindVertex:
		return "vertex"
	case KindFragment:
		return "fragment"
	case KindDevice:
		return "device"
	default:
		return "none"
	}
}

// Annotation is the decoded form of a function's doc-comment tags.
type Annotation struct {
	Kind          Kind
	WorkgroupSize []int // nil unless a @workgroup_size tag was present
}

var tagPattern = regexp.MustCompile(`@(\w+)(?:\s+([^\n*]*))?`)

// ParseAnnotations decodes the @kernel/@vertex/@fragment/@device/
// @workgroup_size tags out of a raw /** ... */ doc comment. It is a pure,
// purely-syntactic scanner: it never consults a type checker and never
// fails outright — a malformed @workgroup_size tag is reported as a warning
// string and simply ignored, matching spec.md §7's Malformed-workgroup-count
// policy for the analogous call-site case.
func ParseAnnotations(doc string) (Annotation, []string) {
	var ann Annotation
	var warnings []string

	if doc == "" {
		return ann, nil
	}

	for _, m := range tagPattern.FindAllStringSubmatch(doc, -1) {
		tag := m[1]
		arg := strings.TrimSpace(m[2])

		switch tag {
		case "kernel":
			ann.Kind = KindKernel
		case "vertex":
			ann.Kind = KindVertex
		case "fragment":
			ann.Kind = KindFragment
		case "device":
			ann.Kind = KindDevice
		case "workgroup_size":
			sizes, err := parseWorkgroupSize(arg)
			if err != nil {
				warnings = append(warnings, "malformed @workgroup_size tag: "+err.Error())
				continue
			}
			ann.WorkgroupSize = sizes
		}
	}

	return ann, warnings
}

// parseWorkgroupSize accepts "N, M, K" with or without surrounding
// parentheses, 1 to 3 positive integers.
func parseWorkgroupSize(arg string) ([]int, error) {
	arg = strings.TrimSpace(arg)
	arg = strings.TrimPrefix(arg, "(")
	arg = strings.TrimSuffix(arg, ")")

	parts := strings.Split(arg, ",")
	if len(parts) == 0 || len(parts) > 3 {
		return nil, &workgroupSizeError{arg}
	}

	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, &workgroupSizeError{arg}
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

type workgroupSizeError struct{ raw string }

func (e *workgroupSizeError) Error() string {
	return "expected 1-3 comma-separated positive integers, got " + strconv.Quote(e.raw)
}
