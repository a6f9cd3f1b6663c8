// Package llvmgen is the concrete instance of the backend contract
// (§4.X): it lowers a validated, register-resolved, typed IR graph to
// an in-memory github.com/llir/llvm module. This is the "LLVM-driven
// backend" spec.md §1 names as an external collaborator, made concrete
// enough to test in pure Go — tests assert on the emitted module's
// textual form, never on running native code (AOT object-file output
// stays a non-goal).
package llvmgen

import (
	"fmt"

	"bfjit/backend"
	"bfjit/ir"
	"bfjit/jitconfig"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Version is the version of this backend a jitconfig.Config's
// MinBackendVersion field is checked against (see
// jitconfig.Config.SatisfiesBackend), pinned to the llir/llvm release
// this package is grounded on.
const Version = "v0.3.6"

// Env is the long-lived, non-thread-safe object a pipeline reuses
// across compiles (§5 "reusing the backend's pipeline object, which
// caches the code-generation environment"): the declared external
// symbols and integer types a module needs are recomputed per Emit
// call (a *llvmir.Module owns its own declarations, it cannot share
// them with a sibling module), but Env is the natural seam a caller
// holds onto and the place future cross-call caching would live.
// Grounded on the teacher's single long-lived *compiler.Compiler/*vm.VM
// object constructed once in cmd/sentra/main.go and reused for a run.
type Env struct {
	Symbols backend.Symbols
}

// NewEnv creates a backend environment using the default bf_putchar /
// bf_getchar symbol names (§4.X).
func NewEnv() *Env {
	return &Env{Symbols: backend.DefaultSymbols}
}

// Signature reports the calling convention (§4.X, §6) that the
// "bf_main" function Emit produces for cfg satisfies, for callers that
// need the ABI shape without re-deriving it from a jitconfig.Config.
func Signature(cfg jitconfig.Config) backend.Signature {
	return backend.Signature{CellWidth: backend.Cell(cfg.CellWidth)}
}

// Emit lowers g to a fresh module containing bf_putchar/bf_getchar
// declarations and one exported function, "bf_main", matching the
// `fn(Context*, Cell*) -> Cell*` signature §6 specifies. g must already
// be register-resolved, folded, and validated; Emit does not re-check
// those invariants itself (that is ir.Validate's job, run beforehand).
func (e *Env) Emit(g *ir.Graph, cfg jitconfig.Config) (*llvmir.Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.SatisfiesBackend(Version) {
		return nil, fmt.Errorf("llvmgen: backend %s is older than MinBackendVersion %s", Version, cfg.MinBackendVersion)
	}

	cellType := cellLLType(g.CellType())
	ptrType := lltypes.NewPointer(cellType)
	ctxType := lltypes.NewPointer(lltypes.I8)

	m := llvmir.NewModule()
	putchar := m.NewFunc(e.Symbols.PutChar, lltypes.Void,
		llvmir.NewParam("ctx", ctxType), llvmir.NewParam("c", lltypes.I32))
	getchar := m.NewFunc(e.Symbols.GetChar, lltypes.I32, llvmir.NewParam("ctx", ctxType))

	fn := m.NewFunc("bf_main", ptrType,
		llvmir.NewParam("ctx", ctxType), llvmir.NewParam("tape", ptrType))
	tapeParam := fn.Params[1]

	t := &translator{
		cellType: cellType,
		putchar:  putchar,
		getchar:  getchar,
		tape:     tapeParam,
		blocks:   make(map[*ir.Block]*llvmir.Block, len(g.Blocks)),
		values:   make(map[*ir.Instruction]value.Value),
		phis:     make(map[*ir.Instruction]*llvmir.InstPhi),
	}

	for _, b := range g.Blocks {
		t.blocks[b] = fn.NewBlock(fmt.Sprintf(".l%d", b.ID()))
	}
	for _, b := range g.Blocks {
		t.predeclarePhis(b)
	}
	for _, b := range g.Blocks {
		t.translateBlock(b)
	}
	for _, b := range g.Blocks {
		t.wirePhis(b)
	}

	return m, nil
}

func cellLLType(t ir.TypeID) *lltypes.IntType {
	switch t {
	case ir.TypeI8:
		return lltypes.I8
	case ir.TypeI16:
		return lltypes.I16
	case ir.TypeI32:
		return lltypes.I32
	default:
		return lltypes.I64
	}
}

type translator struct {
	cellType *lltypes.IntType
	putchar  *llvmir.Func
	getchar  *llvmir.Func
	tape     value.Value

	blocks map[*ir.Block]*llvmir.Block
	values map[*ir.Instruction]value.Value
	phis   map[*ir.Instruction]*llvmir.InstPhi
}

// predeclarePhis creates every phi's llvmir.InstPhi value ahead of the
// main translation pass, with no incoming edges yet: a phi can be read
// by an instruction in its own block before the loop back-edge that
// supplies one of its inputs has itself been translated.
func (t *translator) predeclarePhis(b *ir.Block) {
	for _, in := range b.Instructions() {
		if in.Kind != ir.KindPHI {
			continue
		}
		phi := llvmir.NewPhi()
		phi.Typ = t.typeOf(in)
		blk := t.blocks[b]
		blk.Insts = append(blk.Insts, phi)
		t.phis[in] = phi
		t.values[in] = phi
	}
}

func (t *translator) wirePhis(b *ir.Block) {
	for _, in := range b.Instructions() {
		if in.Kind != ir.KindPHI {
			continue
		}
		phi := t.phis[in]
		for i, pred := range b.Preds {
			phi.Incs = append(phi.Incs, llvmir.NewIncoming(t.values[in.Inputs[i]], t.blocks[pred]))
		}
	}
}

func (t *translator) typeOf(in *ir.Instruction) lltypes.Type {
	switch in.Type {
	case ir.TypePtr:
		return lltypes.NewPointer(t.cellType)
	case ir.TypeNone:
		return lltypes.Void
	default:
		return cellLLType(in.Type)
	}
}

func (t *translator) translateBlock(b *ir.Block) {
	blk := t.blocks[b]
	for _, in := range b.Instructions() {
		t.translateInst(blk, in)
	}
}

func (t *translator) operand(in *ir.Instruction) value.Value {
	v, ok := t.values[in]
	if !ok {
		panic(fmt.Sprintf("llvmgen: instruction %%%d used before it was translated", in.ID()))
	}
	return v
}

func (t *translator) translateInst(blk *llvmir.Block, in *ir.Instruction) {
	switch in.Kind {
	case ir.KindNOP, ir.KindPHI:
		// NOP emits nothing; PHI was already handled by predeclarePhis/wirePhis.
	case ir.KindIMM:
		t.values[in] = constant.NewInt(cellLLType(in.Type), in.ImmInt)
	case ir.KindREG:
		if in.ImmReg != ir.RegPTR {
			panic(fmt.Sprintf("llvmgen: unresolved register %s has no entry value", in.ImmReg))
		}
		t.values[in] = t.tape
	case ir.KindSETREG:
		panic("llvmgen: SETREG reached codegen; register resolution should have eliminated it")
	case ir.KindADD:
		t.values[in] = blk.NewAdd(t.operand(in.Inputs[0]), t.operand(in.Inputs[1]))
	case ir.KindSUB:
		t.values[in] = blk.NewSub(t.operand(in.Inputs[0]), t.operand(in.Inputs[1]))
	case ir.KindGEP:
		ptr := t.operand(in.Inputs[0])
		off := t.operand(in.Inputs[1])
		t.values[in] = blk.NewGetElementPtr(t.cellType, ptr, off)
	case ir.KindLD:
		t.values[in] = blk.NewLoad(t.cellType, t.operand(in.Inputs[0]))
	case ir.KindSTR:
		blk.NewStore(t.operand(in.Inputs[1]), t.operand(in.Inputs[0]))
	case ir.KindGETCHAR:
		call := blk.NewCall(t.getchar, t.contextArg(blk))
		t.values[in] = castInt(blk, call, t.cellType)
	case ir.KindPUTCHAR:
		arg := castInt(blk, t.operand(in.Inputs[0]), lltypes.I32)
		blk.NewCall(t.putchar, t.contextArg(blk), arg)
	case ir.KindGOTO:
		blk.NewBr(t.blocks[in.Block.Succs[0]])
	case ir.KindIF:
		cond := blk.NewICmp(enum.IPredNE, t.operand(in.Inputs[0]), constant.NewInt(t.cellType, 0))
		thenBlk, elseBlk := t.ifTargets(in)
		blk.NewCondBr(cond, thenBlk, elseBlk)
	case ir.KindRET:
		blk.NewRet(t.operand(in.Inputs[0]))
	default:
		panic(fmt.Sprintf("llvmgen: unsupported instruction kind %s", in.Kind))
	}
}

// contextArg locates the function's Context parameter: always the
// block's parent function's first parameter, per the fn(Context*,
// Cell*) signature Emit declares.
func (t *translator) contextArg(blk *llvmir.Block) value.Value {
	return blk.Parent.Params[0]
}

// ifTargets recovers which ir.Block successors an IF terminator
// targets by reading them off the source graph directly: llvmir.Block
// carries no back-pointer to the ir.Block it was generated from, but
// translateInst is always called with in still owned by its original
// ir.Block, so we thread that through instead.
func (t *translator) ifTargets(in *ir.Instruction) (*llvmir.Block, *llvmir.Block) {
	succs := in.Block.Succs
	return t.blocks[succs[0]], t.blocks[succs[1]]
}

// castInt widens or narrows an integer value to target's width,
// matching the ABI boundary at bf_putchar/bf_getchar (always int32_t)
// against a possibly different configured cell width.
func castInt(blk *llvmir.Block, v value.Value, target *lltypes.IntType) value.Value {
	src, ok := v.Type().(*lltypes.IntType)
	if !ok || src.BitSize == target.BitSize {
		return v
	}
	if src.BitSize > target.BitSize {
		return blk.NewTrunc(v, target)
	}
	return blk.NewZExt(v, target)
}
