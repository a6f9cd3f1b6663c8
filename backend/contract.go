// Package backend describes the contract a code-generation backend
// must honor to consume a validated, register-resolved, typed IR graph
// (§4.X). Producing and linking actual machine code is out of scope
// (§1 Non-goals: "producing ahead-of-time object files"); this package
// only pins down the shapes a concrete backend (backend/llvmgen) must
// produce and the symbols it must resolve against.
package backend

// Cell is the integer width a compiled program's tape cells use.
// Mirrors ir.TypeID's I8/I16/I32/I64 family one level removed from the
// IR package, so the ABI description doesn't need to import ir.
type Cell int

const (
	CellI8  Cell = 8
	CellI16 Cell = 16
	CellI32 Cell = 32
	CellI64 Cell = 64
)

// Signature is the calling convention §6 pins down: `fn(Context*,
// Cell*) -> Cell*`. The context and tape pointers are opaque to the
// generated function; it never dereferences Context itself, only
// passes it through to bf_putchar/bf_getchar.
type Signature struct {
	CellWidth Cell
}

// Symbols names the two external entry points a compiled function
// calls out to, resolved by the caller's symbol registry (§4.X).
type Symbols struct {
	PutChar string // "bf_putchar(Context*, int32_t)"
	GetChar string // "bf_getchar(Context*) -> int32_t"
}

// DefaultSymbols is the symbol pair §4.X names explicitly.
var DefaultSymbols = Symbols{PutChar: "bf_putchar", GetChar: "bf_getchar"}

// Handle is the logical shape of the opaque invocable handle the
// pipeline hands back conceptually. It cannot be backed by a real
// function pointer in portable Go without cgo, which is out of scope
// alongside AOT object files (§1) — backend/llvmgen instead produces
// an in-memory *ir.Module (llir/llvm) satisfying this same signature,
// and tests assert on its textual form rather than invoking it.
type Handle func(ctx, tape uintptr) uintptr
