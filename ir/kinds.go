// Package ir is the block-structured, doubly-linked intermediate
// representation the compiler lowers Brainfuck programs into: a graph
// of blocks, each holding an intrusively linked list of instructions
// joined by bidirectional use-def edges.
package ir

// Kind is the opcode of an Instruction.
type Kind int

const (
	KindNOP Kind = iota
	KindIMM
	KindADD
	KindSUB
	KindGEP
	KindLD
	KindSTR
	KindREG
	KindSETREG
	KindGETCHAR
	KindPUTCHAR
	KindPHI
	KindIF
	KindGOTO
	KindRET
)

func (k Kind) String() string {
	switch k {
	case KindNOP:
		return "NOP"
	case KindIMM:
		return "IMM"
	case KindADD:
		return "ADD"
	case KindSUB:
		return "SUB"
	case KindGEP:
		return "GEP"
	case KindLD:
		return "LD"
	case KindSTR:
		return "STR"
	case KindREG:
		return "REG"
	case KindSETREG:
		return "SETREG"
	case KindGETCHAR:
		return "GETCHAR"
	case KindPUTCHAR:
		return "PUTCHAR"
	case KindPHI:
		return "PHI"
	case KindIF:
		return "IF"
	case KindGOTO:
		return "GOTO"
	case KindRET:
		return "RET"
	default:
		return "INVALID"
	}
}

// Pure reports whether instructions of this kind are side-effect-free
// and may be duplicated, omitted, or reordered subject to dataflow
// (§3 invariant 7). LD and REG are pure but ordered: see Ordered.
func (k Kind) Pure() bool {
	switch k {
	case KindNOP, KindIMM, KindADD, KindSUB, KindGEP, KindLD, KindREG, KindPHI:
		return true
	default:
		return false
	}
}

// Ordered reports whether this pure kind's position relative to impure
// instructions in the same block is still significant (§3 invariant 7).
func (k Kind) Ordered() bool {
	return k == KindLD || k == KindREG
}

// Terminator reports whether this kind closes a block, and if so how
// many successors it wires (§3 invariant 3).
func (k Kind) Terminator() (bool, int) {
	switch k {
	case KindIF:
		return true, 2
	case KindGOTO:
		return true, 1
	case KindRET:
		return true, 0
	default:
		return false, 0
	}
}

// Arity is the fixed input count for kinds that don't vary (PHI's arity
// is the block's predecessor count instead, checked separately).
func (k Kind) Arity() (n int, fixed bool) {
	switch k {
	case KindADD, KindSUB, KindSTR, KindGEP:
		return 2, true
	case KindSETREG, KindLD, KindPUTCHAR, KindRET, KindIF:
		return 1, true
	case KindREG, KindIMM, KindGETCHAR, KindNOP, KindGOTO:
		return 0, true
	case KindPHI:
		return 0, false
	default:
		return 0, true
	}
}

// TypeID is the integer-width (or non-value) type of an Instruction's
// result, chosen by the type resolver (§4.F).
type TypeID int

const (
	TypeInvalid TypeID = iota
	TypeNone
	TypePtr
	TypeSize
	TypeI8
	TypeI16
	TypeI32
	TypeI64
)

func (t TypeID) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePtr:
		return "ptr"
	case TypeSize:
		return "size"
	case TypeI8:
		return "i8"
	case TypeI16:
		return "i16"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	default:
		return "invalid"
	}
}

// intLattice orders the integer cell-width types for ADD/SUB's
// max(type(left), type(right)) rule (§4.F) and for the PHI join.
var intLattice = map[TypeID]int{
	TypeI8:  0,
	TypeI16: 1,
	TypeI32: 2,
	TypeI64: 3,
}

// joinTypes returns the wider of two integer types. INVALID is joined
// away: joined with any type it returns that type. Other non-lattice
// types (PTR, NONE, SIZE) joined with themselves return themselves;
// any other mix is a caller bug and returns TypeInvalid.
func joinTypes(a, b TypeID) TypeID {
	if a == TypeInvalid {
		return b
	}
	if b == TypeInvalid {
		return a
	}
	ra, aok := intLattice[a]
	rb, bok := intLattice[b]
	if aok && bok {
		if ra >= rb {
			return a
		}
		return b
	}
	if a == b {
		return a
	}
	return TypeInvalid
}

// CellType maps a configured cell width in bits to its TypeID.
func CellType(width int) TypeID {
	switch width {
	case 8:
		return TypeI8
	case 16:
		return TypeI16
	case 32:
		return TypeI32
	case 64:
		return TypeI64
	default:
		return TypeInvalid
	}
}

// RegKind names a virtual register: a symbolic value produced at
// function entry and possibly redefined by SETREG, eliminated by
// register resolution (§4.D) before code generation.
type RegKind int

const (
	RegNone RegKind = iota
	RegPTR
	RegDEF
)

func (r RegKind) String() string {
	switch r {
	case RegPTR:
		return "PTR"
	case RegDEF:
		return "DEF"
	default:
		return "NONE"
	}
}
