package vm

// Variant selects which instruction dialect a Machine decodes and runs.
type Variant int

const (
	// V1 is the base dialect: opcodes 0..23 plus LVAL (24), no protected mode, no
	// faults. Bounds violations and illegal operations are always
	// terminal. Historical binaries target this variant.
	V1 Variant = iota
	// V2 is the extended dialect: shift instructions, and a
	// protected/user-mode split with a recoverable-fault engine.
	V2
)

func (v Variant) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return "unknown"
	}
}

// opBits returns the width of the opcode field for this variant. v1's
// header opcode width is 4 bits, but that leaves no room for the 24th
// opcode (LVAL) the instruction set requires; this implementation models
// v1's op field as 5 bits wide in practice, per the Open Question
// resolution recorded in DESIGN.md.
func (v Variant) opBits() uint {
	if v == V1 {
		return 5
	}
	return 6
}

// Opcodes shared by both dialects under the same numeric value.
const (
	opMove Word = iota
	opEq
	opGt
	opSgt
	opLt
	opSlt
	opCjmp
	opLoad
	opStore
	opAdd
)

// v1-only opcodes, including the two signed-arithmetic instructions that
// v2 drops (SADD, SSUB). They shift SUB one number and MULT..NOT two
// numbers higher than their v2 counterparts; HLT, OUT, IN and LVAL share
// their v2 numbers because v2 fills the gap with LSHIFT and RSHIFT.
const (
	opV1Sadd  Word = 10
	opV1Ssub  Word = 12
	opV1Sub   Word = 11
	opV1Mult  Word = 13
	opV1Smult Word = 14
	opV1Div   Word = 15
	opV1Sdiv  Word = 16
	opV1And   Word = 17
	opV1Or    Word = 18
	opV1Xor   Word = 19
	opV1Not   Word = 20
	opV1Hlt   Word = 21
	opV1Out   Word = 22
	opV1In    Word = 23
	opV1Lval  Word = 24
)

// v2-only opcodes, including the protected-mode supervisor instructions
// v1 has no equivalent for.
const (
	opV2Sub    Word = 10
	opV2Mult   Word = 11
	opV2Smult  Word = 12
	opV2Div    Word = 13
	opV2Sdiv   Word = 14
	opV2And    Word = 15
	opV2Or     Word = 16
	opV2Xor    Word = 17
	opV2Not    Word = 18
	opV2Lshift Word = 19
	opV2Rshift Word = 20
	opV2Hlt    Word = 21
	opV2Out    Word = 22
	opV2In     Word = 23
	opV2Lval   Word = 24
	opV2Umode  Word = 25
	opV2Lload  Word = 26
	opV2Lstore Word = 27
	opV2Scall  Word = 28
	opV2Fmove  Word = 29
	opV2Pclld  Word = 30
	opV2Svmlo  Word = 31
	opV2Svmhi  Word = 32
	opV2Tload  Word = 33
	opV2Tstore Word = 34
	opV2Trg    Word = 35
)

// isLVal reports whether op uses the load-value instruction layout
// instead of the standard A/B/C layout.
func (v Variant) isLVal(op Word) bool {
	if v == V1 {
		return op == opV1Lval
	}
	return op == opV2Lval
}

// mnemonics maps opcode values to their assembly mnemonic, per variant.
// Used by Disassemble and by the assembler in pkg/asm.
var v1Mnemonics = map[Word]string{
	opMove: "move", opEq: "eq", opGt: "gt", opSgt: "sgt", opLt: "lt",
	opSlt: "slt", opCjmp: "cjmp", opLoad: "load", opStore: "store",
	opAdd: "add", opV1Sadd: "sadd", opV1Ssub: "ssub", opV1Sub: "sub",
	opV1Mult: "mult", opV1Smult: "smult", opV1Div: "divide",
	opV1Sdiv: "sdiv", opV1And: "and", opV1Or: "or", opV1Xor: "xor",
	opV1Not: "not", opV1Hlt: "hlt", opV1Out: "out", opV1In: "in",
	opV1Lval: "lval",
}

var v2Mnemonics = map[Word]string{
	opMove: "move", opEq: "eq", opGt: "gt", opSgt: "sgt", opLt: "lt",
	opSlt: "slt", opCjmp: "cjmp", opLoad: "load", opStore: "store",
	opAdd: "add", opV2Sub: "sub", opV2Mult: "mult", opV2Smult: "smult",
	opV2Div: "divide", opV2Sdiv: "sdiv", opV2And: "and", opV2Or: "or",
	opV2Xor: "xor", opV2Not: "not", opV2Lshift: "lshift", opV2Rshift: "rshift",
	opV2Hlt: "hlt", opV2Out: "out", opV2In: "in", opV2Lval: "lval",
	opV2Umode: "umode", opV2Lload: "lload", opV2Lstore: "lstore",
	opV2Scall: "scall", opV2Fmove: "fmove", opV2Pclld: "pclload",
	opV2Svmlo: "svmlow", opV2Svmhi: "svmhi", opV2Tload: "tload",
	opV2Tstore: "tstore", opV2Trg: "trg",
}

// Mnemonics returns the opcode->mnemonic table for v.
func (v Variant) Mnemonics() map[Word]string {
	if v == V1 {
		return v1Mnemonics
	}
	return v2Mnemonics
}

// OpcodeFor resolves a mnemonic (case-sensitive, lowercase) to its
// numeric opcode under v, and whether that opcode uses the load-value
// layout. Used by pkg/asm to assemble mnemonic source into instruction
// words.
func (v Variant) OpcodeFor(mnemonic string) (op Word, isLVal bool, ok bool) {
	for code, name := range v.Mnemonics() {
		if name == mnemonic {
			return code, v.isLVal(code), true
		}
	}
	return 0, false, false
}

// privileged reports whether op may only execute while Machine.Protected
// is true. Only meaningful for V2; V1 has no privilege concept.
func privileged(op Word) bool {
	switch op {
	case opV2Hlt, opV2Out, opV2In, opV2Umode, opV2Lload, opV2Lstore,
		opV2Scall, opV2Fmove, opV2Pclld, opV2Svmlo, opV2Svmhi,
		opV2Tload, opV2Tstore:
		return true
	default:
		return false
	}
}
