package vm

import "fmt"

// Disassemble renders a single instruction word as assembly text, in the
// mnemonic set pkg/asm assembles from. Used by the CLI's -v trace.
func Disassemble(v Variant, instr Word) string {
	opBits := v.opBits()
	op := instr >> (32 - opBits)
	mnemonic, known := v.Mnemonics()[op]
	if !known {
		return fmt.Sprintf("<unknown opcode %d>", op)
	}
	if v.isLVal(op) {
		lv := decodeLVal(instr, opBits)
		return fmt.Sprintf("%s r%d %#x", mnemonic, lv.a, lv.val)
	}
	std := decodeStd(instr, opBits)
	return fmt.Sprintf("%s r%d r%d r%d", mnemonic, std.a, std.b, std.c)
}
