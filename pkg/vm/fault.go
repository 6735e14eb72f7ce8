package vm

// raiseFault implements the v2 fault engine from §4.3. It is invoked from
// the interpreter loop (execution bounds, timer, unknown opcode,
// privileged-in-user-mode) or from a handler that detects a user-mode
// violation (LOAD/STORE bounds, divide by zero, TRG). It never returns an
// error: by construction it is only ever called while Variant == V2 and
// Protected == false.
//
// Effect, in order: undo the post-fetch timer decrement, snapshot user
// registers into the lookaside registers, record the faulting
// instruction's PC, record the fault code, enter protected mode, and
// redirect PC to the supervisor callback. State is left at Run so the
// interpreter continues straight into the callback.
func (m *Machine) raiseFault(code Fault) {
	m.Timer++
	m.LReg = m.Reg
	m.LPC = m.PC - 1
	m.FaultCode = code
	m.Protected = true
	m.PC = m.Callback
}
