package shaderfn

import (
	"strings"
	"testing"

	"shaderscript/internal/cache"
	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/structgen"
	"shaderscript/pkg/types"
)

func parseFile(t *testing.T, src string) *ast.File {
	t.Helper()
	p, err := ast.New()
	if err != nil {
		t.Fatalf("ast.New() failed: %v", err)
	}
	file, err := p.ParseString("test.ts", src)
	if err != nil {
		t.Fatalf("ParseString failed: %v\nsource:\n%s", err, src)
	}
	return file
}

func newEmitter(t *testing.T, file *ast.File) (*Emitter, *diag.Diagnostics) {
	mapper := types.NewMapper(cache.New())
	d := diag.New("run1")
	reg := structgen.NewRegistry(file, mapper, d)
	return New(mapper, reg, d, "", nil), d
}

func findFunc(file *ast.File, name string) *ast.FuncDecl {
	for _, d := range file.Decls {
		if d.Func != nil && d.Func.Name == name {
			return d.Func
		}
	}
	return nil
}

func TestEntryKernelDefaultWorkgroupSize(t *testing.T) {
	file := parseFile(t, `
/** @kernel */
function add(a: SharedArray<f32>, b: SharedArray<f32>, out: SharedArray<f32>) {
    out[i] = a[i] + b[i];
}
`)
	fn := findFunc(file, "add")
	em, _ := newEmitter(t, file)
	text, err := em.Entry(fn, ast.Annotation{Kind: ast.KindKernel}, "")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if !strings.Contains(text, "@workgroup_size(64)") {
		t.Fatalf("expected default workgroup size 64, got:\n%s", text)
	}
	if !strings.Contains(text, "@compute") {
		t.Fatalf("expected @compute stage attribute, got:\n%s", text)
	}
	if strings.Count(text, "var<storage, read_write>") != 3 {
		t.Fatalf("expected 3 storage bindings for array params, got:\n%s", text)
	}
	if !strings.Contains(text, "@group(0) @binding(0)") || !strings.Contains(text, "@group(0) @binding(2)") {
		t.Fatalf("expected dense binding indices, got:\n%s", text)
	}
}

func TestEntryKernelCustomWorkgroupSize(t *testing.T) {
	file := parseFile(t, `
/**
 * @kernel
 * @workgroup_size (16, 16)
 */
function blur(a: SharedArray<f32>, out: SharedArray<f32>) {
    out[i] = a[i];
}
`)
	fn := findFunc(file, "blur")
	em, _ := newEmitter(t, file)
	text, err := em.Entry(fn, ast.Annotation{Kind: ast.KindKernel, WorkgroupSize: []int{16, 16}}, "")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if !strings.Contains(text, "@workgroup_size(16, 16)") {
		t.Fatalf("expected custom workgroup size, got:\n%s", text)
	}
}

func TestEntryStructParamGetsUniformBinding(t *testing.T) {
	file := parseFile(t, `
interface Params {
    scale: f32;
}

/** @kernel */
function scaleAll(p: Params, data: SharedArray<f32>) {
    data[i] = data[i] * p.scale;
}
`)
	fn := findFunc(file, "scaleAll")
	em, _ := newEmitter(t, file)
	text, err := em.Entry(fn, ast.Annotation{Kind: ast.KindKernel}, "")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if !strings.Contains(text, "struct Params {") {
		t.Fatalf("expected struct closure to include Params, got:\n%s", text)
	}
	if !strings.Contains(text, "var<uniform> p : Params;") {
		t.Fatalf("expected uniform binding for struct param, got:\n%s", text)
	}
	if !strings.Contains(text, "var<storage, read_write> data :") {
		t.Fatalf("expected storage binding for array param, got:\n%s", text)
	}
}

func TestEntryVertexAndFragmentStagePrefixes(t *testing.T) {
	file := parseFile(t, `
/** @vertex */
function vmain() {
}

/** @fragment */
function fmain() {
}
`)
	em, _ := newEmitter(t, file)

	vtext, err := em.Entry(findFunc(file, "vmain"), ast.Annotation{Kind: ast.KindVertex}, "")
	if err != nil {
		t.Fatalf("vertex Entry failed: %v", err)
	}
	if !strings.Contains(vtext, "@vertex") {
		t.Fatalf("expected @vertex stage attribute, got:\n%s", vtext)
	}

	ftext, err := em.Entry(findFunc(file, "fmain"), ast.Annotation{Kind: ast.KindFragment}, "")
	if err != nil {
		t.Fatalf("fragment Entry failed: %v", err)
	}
	if !strings.Contains(ftext, "@fragment") {
		t.Fatalf("expected @fragment stage attribute, got:\n%s", ftext)
	}
}

func TestEntryRejectsUnannotatedFunction(t *testing.T) {
	file := parseFile(t, `
function plain() {
}
`)
	fn := findFunc(file, "plain")
	em, _ := newEmitter(t, file)
	if _, err := em.Entry(fn, ast.Annotation{Kind: ast.KindNone}, ""); err == nil {
		t.Fatalf("expected an error for an unannotated function")
	}
}

func TestDevicePrependedBeforeEntry(t *testing.T) {
	file := parseFile(t, `
/** @device */
function square(x: f32): f32 {
    return x * x;
}

/** @kernel */
function run(data: SharedArray<f32>) {
    data[i] = data[i];
}
`)
	em, _ := newEmitter(t, file)
	deviceText, err := em.Device(findFunc(file, "square"))
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if !strings.Contains(deviceText, "fn square(x : f32) -> f32 {") {
		t.Fatalf("unexpected device function signature:\n%s", deviceText)
	}

	entryText, err := em.Entry(findFunc(file, "run"), ast.Annotation{Kind: ast.KindKernel}, deviceText)
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if !strings.HasPrefix(entryText, deviceText) {
		t.Fatalf("expected device text prepended to kernel text, got:\n%s", entryText)
	}
}

func TestDeviceRejectsUntypedNumberParam(t *testing.T) {
	file := parseFile(t, `
/** @device */
function bad(x: number): number {
    return x;
}
`)
	em, _ := newEmitter(t, file)
	if _, err := em.Device(findFunc(file, "bad")); err == nil {
		t.Fatalf("expected an error for an untyped device function parameter")
	}
}

func TestDeviceWrapsArrayParamAsStoragePointer(t *testing.T) {
	file := parseFile(t, `
/** @device */
function zeroOut(data: SharedArray<f32>): void {
    data[i] = 0.0;
}
`)
	em, _ := newEmitter(t, file)
	text, err := em.Device(findFunc(file, "zeroOut"))
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if !strings.Contains(text, "ptr<storage, array<f32>, read_write>") {
		t.Fatalf("expected array param wrapped as storage pointer, got:\n%s", text)
	}
	if strings.Contains(text, "-> void") {
		t.Fatalf("expected void return type omitted, got:\n%s", text)
	}
}
