// Command asm assembles a mnemonic source file into the binary image
// format the vm package loads.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dkordic/rvm32/pkg/asm"
	"github.com/dkordic/rvm32/pkg/vm"
)

func main() {
	log.SetFlags(0)
	variantFlag := flag.String("variant", "v1", "instruction dialect: v1 or v2")
	memorySize := flag.Uint("memsize", 256, "target memory size in words")
	out := flag.String("o", "", "output image path (default: stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: asm [-variant v1|v2] [-memsize N] [-o out.img] <source-file>")
		os.Exit(1)
	}

	var variant vm.Variant
	switch *variantFlag {
	case "v1":
		variant = vm.V1
	case "v2":
		variant = vm.V2
	default:
		log.Fatalf("asm: unknown variant %q, want v1 or v2", *variantFlag)
	}

	fp, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer fp.Close()

	img, err := asm.Assemble(variant, fp, vm.Word(*memorySize))
	if err != nil {
		log.Fatal(err)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(img); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := os.WriteFile(*out, img, 0o644); err != nil {
		log.Fatal(err)
	}
}
