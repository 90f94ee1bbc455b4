package translate

import (
	"strings"
	"testing"

	"shaderscript/internal/cache"
	"shaderscript/pkg/ast"
	"shaderscript/pkg/diag"
	"shaderscript/pkg/types"
)

func translateBody(t *testing.T, src string) (string, *diag.Diagnostics) {
	t.Helper()
	p, err := ast.New()
	if err != nil {
		t.Fatalf("ast.New() failed: %v", err)
	}
	file, err := p.ParseString("test.ts", src)
	if err != nil {
		t.Fatalf("ParseString failed: %v\nsource:\n%s", err, src)
	}
	fn := file.Decls[0].Func
	if fn == nil {
		t.Fatalf("expected a function decl")
	}
	d := diag.New("run1")
	tr := New(types.NewMapper(cache.New()), d)
	return tr.Body(fn.Body), d
}

func TestVarDeclLetAndVar(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    const a = 1;
    let b: f32 = 2.0;
    var c = 3;
}
`)
	if !strings.Contains(out, "let a = 1;") {
		t.Errorf("expected immutable const to render as let, got:\n%s", out)
	}
	if !strings.Contains(out, "var b : f32 = 2.0;") {
		t.Errorf("expected typed let-binding to render as var, got:\n%s", out)
	}
	if !strings.Contains(out, "var c = 3;") {
		t.Errorf("expected var binding to stay var, got:\n%s", out)
	}
}

func TestIfElseIfChain(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    if (x < 0) {
        y = 0;
    } else if (x > 1) {
        y = 1;
    } else {
        y = x;
    }
}
`)
	if !strings.Contains(out, "if (x < 0) {") || !strings.Contains(out, "} else if (x > 1) {") || !strings.Contains(out, "} else {") {
		t.Fatalf("unexpected if/else chain rendering:\n%s", out)
	}
}

func TestForLoopRendering(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    for (let i = 0; i < 10; i++) {
        sum += i;
    }
}
`)
	if !strings.Contains(out, "for (var i = 0; i < 10; i ++) {") && !strings.Contains(out, "for (var i = 0; i < 10; i++) {") {
		t.Fatalf("unexpected for-loop rendering:\n%s", out)
	}
}

func TestDoWhileLowersToLoop(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    do {
        x++;
    } while (x < 10);
}
`)
	if strings.Contains(out, "do {") {
		t.Fatalf("do-while should be lowered, not preserved:\n%s", out)
	}
	if !strings.Contains(out, "loop {") || !strings.Contains(out, "if (!(x < 10)) { break; }") {
		t.Fatalf("expected loop-with-break lowering, got:\n%s", out)
	}
}

func TestSwitchRendering(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    switch (mode) {
        case 1:
            x = 1;
        default:
            x = 0;
    }
}
`)
	if !strings.Contains(out, "switch (mode) {") || !strings.Contains(out, "case 1: {") || !strings.Contains(out, "default: {") {
		t.Fatalf("unexpected switch rendering:\n%s", out)
	}
}

func TestTernaryLowersToSelectWithSwappedOperands(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    y = cond ? a : b;
}
`)
	if !strings.Contains(out, "select(b, a, cond)") {
		t.Fatalf("expected select(whenFalse, whenTrue, cond), got:\n%s", out)
	}
}

func TestAtomicCallPrefixesAddressOf(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    atomicAdd(counter, 1);
}
`)
	if !strings.Contains(out, "atomicAdd(&counter, 1)") {
		t.Fatalf("expected & prefix on first atomic argument, got:\n%s", out)
	}
}

func TestGlobalIdRemap(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    i = global_id.x;
}
`)
	if !strings.Contains(out, "global_invocation_id.x") {
		t.Fatalf("expected global_id remapped to global_invocation_id, got:\n%s", out)
	}
}

func TestAsAndAwaitStripped(t *testing.T) {
	out, _ := translateBody(t, `
function f() {
    y = await x as f32;
}
`)
	if strings.Contains(out, "as f32") {
		t.Fatalf("expected \"as T\" to be stripped, got:\n%s", out)
	}
	if !strings.Contains(out, "y = x;") {
		t.Fatalf("expected bare inner expression, got:\n%s", out)
	}
}

func TestOrdinaryBodyRaisesNoFatalDiagnostic(t *testing.T) {
	// The unsupported-node fallback cannot be reached through the grammar,
	// so this test only confirms the ordinary body below raises no fatal
	// diagnostic.
	_, d := translateBody(t, `
function f() {
    let a = 1;
}
`)
	if d.HasFatal() {
		t.Fatalf("did not expect a fatal diagnostic: %v", d.Items())
	}
}
