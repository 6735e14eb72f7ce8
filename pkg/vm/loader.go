package vm

import "io"

const headerBytes = 4

// Load parses a binary image per §6: bytes 0..3 are memory_size as a
// big-endian uint32, and the remaining bytes are consecutive big-endian
// 4-byte words loaded into memory[0..]. in and out are the host-provided
// byte source/sink IN and OUT read from and write to; either may be nil
// if the guest program is known never to execute that opcode.
//
// Load always returns a non-nil *Machine. Its State field reports the
// outcome: Run on success (ready for Run/Step), Fail if the header is
// inconsistent with the payload length or declares memory_size == 0 (the
// machine must have somewhere to fetch its first instruction from), or
// Mem if memorySize words could not be allocated.
func Load(variant Variant, image []byte, in io.ByteReader, out io.ByteWriter) *Machine {
	m := &Machine{Variant: variant, in: in, out: out}

	if len(image) < headerBytes {
		m.State = Fail
		return m
	}
	memorySize := bigEndianWord(image[:headerBytes])
	if memorySize == 0 {
		m.State = Fail
		return m
	}

	payload := image[headerBytes:]
	if len(payload)%4 != 0 {
		m.State = Fail
		return m
	}
	words := Word(len(payload) / 4)
	if words > memorySize {
		m.State = Fail
		return m
	}

	mem, ok := allocMemory(memorySize)
	if !ok {
		m.State = Mem
		return m
	}

	for i := Word(0); i < words; i++ {
		mem[i] = bigEndianWord(payload[i*4:])
	}

	m.Memory = mem
	m.MemorySize = memorySize
	m.State = Run
	return m
}
