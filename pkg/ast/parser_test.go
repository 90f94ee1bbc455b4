package ast

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	file, err := p.ParseString("test.ts", src)
	if err != nil {
		t.Fatalf("ParseString failed: %v\nsource:\n%s", err, src)
	}
	return file
}

func TestParseImportAndConst(t *testing.T) {
	file := mustParse(t, `
import { runtime } from "./runtime";
const WIDTH: u32 = 256;
const SCALE = 2;
`)
	if len(file.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(file.Decls))
	}
	if file.Decls[0].Import == nil || file.Decls[0].Import.Path != "./runtime" {
		t.Fatalf("expected import decl, got %+v", file.Decls[0])
	}
	if file.Decls[1].Const == nil || file.Decls[1].Const.Name != "WIDTH" || file.Decls[1].Const.Value != "256" {
		t.Fatalf("unexpected const decl: %+v", file.Decls[1].Const)
	}
	if file.Decls[2].Const.Type != nil {
		t.Fatalf("expected untyped const, got type %v", file.Decls[2].Const.Type)
	}
}

func TestParseInterfaceAndTypeAlias(t *testing.T) {
	file := mustParse(t, `
interface Params {
    width: u32;
    height: u32;
    time: f32;
}

type Other = {
    x: f32;
};
`)
	iface := file.Decls[0].Interface
	if iface == nil || iface.Name != "Params" || len(iface.Fields) != 3 {
		t.Fatalf("unexpected interface decl: %+v", iface)
	}
	alias := file.Decls[1].TypeAlias
	if alias == nil || alias.Object == nil || len(alias.Object.Fields) != 1 {
		t.Fatalf("unexpected type alias decl: %+v", alias)
	}
}

func TestParseKernelFunctionWithAnnotation(t *testing.T) {
	file := mustParse(t, `
/**
 * @kernel
 * @workgroup_size 8, 8, 1
 */
function add(a: SharedArray<f32>, b: SharedArray<f32>, out: SharedArray<f32>) {
    out[i] = a[i] + b[i];
}
`)
	fn := file.Decls[0].Func
	if fn == nil || fn.Name != "add" {
		t.Fatalf("expected function decl named add, got %+v", fn)
	}
	if fn.Doc == nil || !strings.Contains(*fn.Doc, "@kernel") {
		t.Fatalf("expected doc comment carrying @kernel, got %v", fn.Doc)
	}
	ann, warnings := ParseAnnotations(*fn.Doc)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if ann.Kind != KindKernel {
		t.Fatalf("expected KindKernel, got %v", ann.Kind)
	}
	if len(ann.WorkgroupSize) != 3 || ann.WorkgroupSize[0] != 8 {
		t.Fatalf("unexpected workgroup size: %v", ann.WorkgroupSize)
	}
	if len(fn.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Type.Name != "SharedArray" || fn.Params[0].Type.Generic.Name != "f32" {
		t.Fatalf("unexpected param type: %+v", fn.Params[0].Type)
	}
}

func TestParseControlFlowForms(t *testing.T) {
	file := mustParse(t, `
/** @device */
function clamp01(x: f32): f32 {
    let result = x;
    if (result < 0.0) {
        result = 0.0;
    } else if (result > 1.0) {
        result = 1.0;
    }
    for (let i = 0; i < 10; i++) {
        result = result + 1.0;
    }
    let j = 0;
    do {
        j++;
    } while (j < 10);
    return result;
}
`)
	fn := file.Decls[0].Func
	if fn == nil || len(fn.Body.Statements) != 6 {
		t.Fatalf("expected 6 top-level statements, got %+v", fn)
	}
	if fn.Body.Statements[1].If == nil {
		t.Fatalf("expected second statement to be an if")
	}
	if fn.Body.Statements[1].If.Else == nil || fn.Body.Statements[1].If.Else.If == nil {
		t.Fatalf("expected else-if chaining")
	}
	if fn.Body.Statements[2].For == nil {
		t.Fatalf("expected third statement to be a for loop")
	}
	if fn.Body.Statements[4].DoWhile == nil {
		t.Fatalf("expected fifth statement to be a do-while loop")
	}
}

func TestParseTernaryAndCallExpressions(t *testing.T) {
	file := mustParse(t, `
/** @device */
function pick(cond: boolean, a: f32, b: f32): f32 {
    return cond ? a : b;
}
`)
	fn := file.Decls[0].Func
	ret := fn.Body.Statements[0].Return
	if ret == nil || ret.Value == nil {
		t.Fatalf("expected return statement with value")
	}
	if !ret.Value.IsTernary() {
		t.Fatalf("expected ternary expression")
	}
}

func TestParseKernelCallSiteWithTypeArgTuple(t *testing.T) {
	file := mustParse(t, `
async function run() {
    await add<[64, 1, 1]>(a, b, out);
}
`)
	fn := file.Decls[0].Func
	stmt := fn.Body.Statements[0].ExprStmt
	if stmt == nil || !stmt.Await {
		t.Fatalf("expected awaited expression statement")
	}
	atom := stmt.Call.Cond.Left.Operand.Primary.Atom
	if atom == nil || atom.Base != "add" {
		t.Fatalf("expected call to add, got %+v", atom)
	}
	call := atom.Suffixes[0].Call
	if call == nil || call.TypeArgs == nil || call.TypeArgs.Tuple == nil {
		t.Fatalf("expected a parsed type-argument tuple, got %+v", call)
	}
	if len(call.TypeArgs.Tuple.Values) != 3 || call.TypeArgs.Tuple.Values[0] != "64" {
		t.Fatalf("unexpected tuple values: %v", call.TypeArgs.Tuple.Values)
	}
}

func TestParseMalformedTypeArgumentStillParses(t *testing.T) {
	file := mustParse(t, `
async function run() {
    await add<SomeType>(a, b, out);
}
`)
	fn := file.Decls[0].Func
	stmt := fn.Body.Statements[0].ExprStmt
	call := stmt.Call.Cond.Left.Operand.Primary.Atom.Suffixes[0].Call
	if call.TypeArgs == nil || call.TypeArgs.Tuple != nil || call.TypeArgs.Type == nil {
		t.Fatalf("expected a non-tuple type argument, got %+v", call.TypeArgs)
	}
	if call.TypeArgs.Type.Name != "SomeType" {
		t.Fatalf("unexpected type argument: %+v", call.TypeArgs.Type)
	}
}
