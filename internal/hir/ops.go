package hir

// BinOpKind enumerates the binary operators shared by HIR and LIR.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr  // arithmetic
	OpUShr // logical
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpULt // unsigned less-than
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpShl:
		return "shl"
	case OpShr:
		return "shr"
	case OpUShr:
		return "ushr"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpULt:
		return "ult"
	default:
		return "binop?"
	}
}

// UnaryOpKind enumerates the unary operators.
type UnaryOpKind int

const (
	OpNeg UnaryOpKind = iota
	OpNot             // bitwise complement
)

func (k UnaryOpKind) String() string {
	switch k {
	case OpNeg:
		return "neg"
	case OpNot:
		return "not"
	default:
		return "unop?"
	}
}
