package vm

import "errors"

// These are Go-API-level errors: they report misuse of the package by the
// embedding host program, not anything a guest program can observe. They
// are recorded on Machine.lastErr, retrievable via Err(), and never
// conflated with the State/Fault data planes, which are the only things
// a guest program's behavior can be judged against.
var (
	// ErrNoByteSource is recorded when IN executes but the Machine was
	// constructed without an io.ByteReader. The guest still observes
	// ordinary EOF behavior (0xFFFFFFFF in the destination register).
	ErrNoByteSource = errors.New("vm: no byte source configured")
	// ErrNoByteSink is recorded when OUT executes but the Machine was
	// constructed without an io.ByteWriter. The byte is silently
	// dropped; the guest observes no difference from a successful OUT.
	ErrNoByteSink = errors.New("vm: no byte sink configured")
)
