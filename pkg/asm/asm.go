// Package asm assembles mnemonic source into the binary image format the
// vm package loads: a big-endian memory_size header followed by one
// big-endian word per instruction.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dkordic/rvm32/pkg/vm"
)

// Line is one assembled instruction, or a parse/encode error tied to the
// source line that produced it.
type Line struct {
	Word   vm.Word
	Err    error
	Lineno int
}

// StartAssembler starts the assembler in a background goroutine and
// returns a channel of Line values, one per source line that contains an
// instruction. Blank lines and lines starting with ';' are skipped.
func StartAssembler(variant vm.Variant, r io.Reader) <-chan Line {
	out := make(chan Line)
	go assembleAsync(variant, r, out)
	return out
}

// assembleAsync runs a two-pass assembly: the first pass records label
// addresses, the second encodes each instruction now that every label
// target is known. This mirrors how a forward jump can only be resolved
// once the whole program has been scanned once.
func assembleAsync(variant vm.Variant, r io.Reader, out chan<- Line) {
	defer close(out)

	type rawLine struct {
		lineno int
		text   string
	}
	var raws []rawLine
	labels := make(map[string]vm.Word)

	scanner := bufio.NewScanner(r)
	lineno := 0
	var addr vm.Word
	for scanner.Scan() {
		lineno++
		text := stripComment(scanner.Text())
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if label, ok := strings.CutSuffix(text, ":"); ok {
			labels[strings.TrimSpace(label)] = addr
			continue
		}
		raws = append(raws, rawLine{lineno: lineno, text: text})
		addr++
	}
	if err := scanner.Err(); err != nil {
		out <- Line{Err: fmt.Errorf("asm: read: %w", err)}
		return
	}

	for _, rl := range raws {
		w, err := encodeLine(variant, rl.text, labels)
		out <- Line{Word: w, Err: err, Lineno: rl.lineno}
	}
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// encodeLine parses one instruction line. Standard-layout instructions
// are "mnemonic ra rb rc"; load-value instructions are "mnemonic ra
// value", where value is a decimal or 0x-prefixed hex literal, or a
// label defined anywhere in the source (forward references included).
func encodeLine(variant vm.Variant, text string, labels map[string]vm.Word) (vm.Word, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("asm: empty instruction")
	}
	mnemonic := strings.ToLower(fields[0])
	op, isLVal, ok := variant.OpcodeFor(mnemonic)
	if !ok {
		return 0, fmt.Errorf("asm: unknown mnemonic %q for %s", mnemonic, variant)
	}

	args := fields[1:]
	if isLVal {
		if len(args) != 2 {
			return 0, fmt.Errorf("asm: %s wants 2 operands, got %d", mnemonic, len(args))
		}
		a, err := parseRegister(args[0])
		if err != nil {
			return 0, err
		}
		val, err := parseImmediate(args[1], labels)
		if err != nil {
			return 0, err
		}
		return vm.EncodeLoadValue(variant, op, a, val), nil
	}

	if len(args) != 3 {
		return 0, fmt.Errorf("asm: %s wants 3 operands, got %d", mnemonic, len(args))
	}
	a, err := parseRegister(args[0])
	if err != nil {
		return 0, err
	}
	b, err := parseRegister(args[1])
	if err != nil {
		return 0, err
	}
	c, err := parseRegister(args[2])
	if err != nil {
		return 0, err
	}
	return vm.EncodeStandard(variant, op, a, b, c), nil
}

func parseRegister(s string) (vm.Word, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "r")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("asm: bad register %q: %w", s, err)
	}
	if n > 15 {
		return 0, fmt.Errorf("asm: register out of range: r%d", n)
	}
	return vm.Word(n), nil
}

func parseImmediate(s string, labels map[string]vm.Word) (vm.Word, error) {
	if addr, ok := labels[s]; ok {
		return addr, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("asm: bad immediate %q: %w", s, err)
	}
	return vm.Word(n), nil
}

// Assemble reads mnemonic source from r and returns the §6 binary image
// for memorySize words of target memory. The assembled program must fit
// within memorySize words.
func Assemble(variant vm.Variant, r io.Reader, memorySize vm.Word) ([]byte, error) {
	var words []vm.Word
	for line := range StartAssembler(variant, r) {
		if line.Err != nil {
			return nil, fmt.Errorf("asm: line %d: %w", line.Lineno, line.Err)
		}
		words = append(words, line.Word)
	}
	if vm.Word(len(words)) > memorySize {
		return nil, fmt.Errorf("asm: program is %d words, exceeds memory_size %d", len(words), memorySize)
	}
	buf := make([]byte, 4+4*memorySize)
	putBigEndianWord(buf, memorySize)
	for i, w := range words {
		putBigEndianWord(buf[4+4*i:], w)
	}
	return buf, nil
}

func putBigEndianWord(b []byte, w vm.Word) {
	b[0] = byte(w >> 24)
	b[1] = byte(w >> 16)
	b[2] = byte(w >> 8)
	b[3] = byte(w)
}
