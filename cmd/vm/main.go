// Command vm loads a binary image and runs it to completion (or to its
// first unrecoverable state), per the exit-code table: 0 on HALT, 3 on
// FAIL, 4 on MEM, 5 on INTERN, 2 on any file or console I/O error, and 1
// on a bad invocation.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dkordic/rvm32/pkg/console"
	"github.com/dkordic/rvm32/pkg/vm"
)

func main() {
	log.SetFlags(0)
	variantFlag := flag.String("variant", "v2", "instruction dialect: v1 or v2")
	verbose := flag.Bool("v", false, "trace every fetched instruction to stderr")
	debug := flag.Bool("d", false, "single-step: pause for Enter before each instruction")
	ttyAddr := flag.String("tty", "", "listen address for a TCP console (e.g. 127.0.0.1:0); empty uses stdin/stdout for IN/OUT")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vm [-v] [-d] [-variant v1|v2] [-tty addr] <image-file>")
		os.Exit(1)
	}

	variant, err := parseVariant(*variantFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	image, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Print(err)
		os.Exit(2)
	}

	var con *console.Console
	if *ttyAddr != "" {
		con, err = console.Listen(*ttyAddr)
		if err != nil {
			log.Print(err)
			os.Exit(2)
		}
		defer con.Close()
	}

	var reader io.ByteReader
	var writer io.ByteWriter
	if con != nil {
		reader, writer = con, con
	} else {
		reader, writer = bufio.NewReader(os.Stdin), bufio.NewWriter(os.Stdout)
	}
	machine := vm.Load(variant, image, reader, writer)

	if *verbose {
		machine.Trace = func(pc, instr vm.Word) {
			log.Printf("vm: pc=%-6d %#08x  %s", pc, instr, vm.Disassemble(variant, instr))
		}
	}

	var state vm.State
	if *debug {
		for {
			fmt.Fprint(os.Stderr, "vm: paused, press Enter to step... ")
			fmt.Scanln()
			state = machine.Step()
			if state != vm.Run {
				break
			}
		}
	} else {
		state = machine.Run()
	}

	if err := machine.Err(); err != nil {
		log.Printf("vm: %v", err)
	}
	log.Printf("vm: terminated: %s", state)
	os.Exit(state.ExitCode())
}

func parseVariant(s string) (vm.Variant, error) {
	switch s {
	case "v1":
		return vm.V1, nil
	case "v2":
		return vm.V2, nil
	default:
		return 0, fmt.Errorf("vm: unknown variant %q, want v1 or v2", s)
	}
}
