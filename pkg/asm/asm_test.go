package asm

import (
	"strings"
	"testing"

	"github.com/dkordic/rvm32/pkg/vm"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := `
		lval r0 0x41
		out r0 r0 r0
		hlt r0 r0 r0
	`
	img, err := Assemble(vm.V1, strings.NewReader(src), 3)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := vm.Load(vm.V1, img, nil, nil)
	if m.State != vm.Run {
		t.Fatalf("want RUN got %s", m.State)
	}
}

func TestAssembleResolvesForwardLabel(t *testing.T) {
	src := `
		lval r1 1
		lval r2 done
		cjmp r1 r2 r0
		lval r3 99
	done:
		hlt r0 r0 r0
	`
	img, err := Assemble(vm.V1, strings.NewReader(src), 5)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := vm.Load(vm.V1, img, nil, nil)
	s := m.Run()
	if s != vm.Halt {
		t.Fatalf("want HALT got %s", s)
	}
	if m.Reg[3] != 0 {
		t.Fatalf("jump should have skipped the r3 assignment, got %d", m.Reg[3])
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := Assemble(vm.V1, strings.NewReader("bogus r0 r0 r0"), 4)
	if err == nil {
		t.Fatal("want error for unknown mnemonic")
	}
}

func TestAssembleWrongOperandCount(t *testing.T) {
	_, err := Assemble(vm.V1, strings.NewReader("lval r0 1 2"), 4)
	if err == nil {
		t.Fatal("want error for wrong operand count")
	}
}

func TestAssembleProgramTooLargeForMemory(t *testing.T) {
	src := "hlt r0 r0 r0\nhlt r0 r0 r0\n"
	_, err := Assemble(vm.V1, strings.NewReader(src), 1)
	if err == nil {
		t.Fatal("want error when program exceeds memory_size")
	}
}
