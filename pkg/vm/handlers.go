package vm

// A stdHandler implements a standard-layout (A, B, C) opcode. It returns
// Run to continue, or a terminal State to end the interpreter loop. It
// must never be called for a privileged opcode in user mode or for an
// opcode whose memory/execution bounds have not already been checked by
// the caller for the parts of the check that are variant-independent;
// handlers that need address-specific bounds checks (LOAD, STORE) do them
// internally since the address is an operand, not the PC.
type stdHandler func(m *Machine, a, b, c Word) State

// checkAddr validates a memory address register value against the
// currently active bounds for m, per §4.4's LOAD/STORE policy. On a v1
// violation it returns (false, Fail): the caller should stop and return
// Fail. On a v2 violation it raises the fault itself (leaving State at
// Run, PC redirected to the callback) and returns (false, Run): the
// caller should stop without applying the opcode's effect, but the loop
// continues normally. On success it returns (true, Run).
func (m *Machine) checkAddr(addr Word) (ok bool, onFail State) {
	if m.Variant == V1 {
		if addr >= m.MemorySize {
			return false, Fail
		}
		return true, Run
	}
	if m.Protected {
		if addr >= m.MemorySize {
			return false, Fail
		}
		return true, Run
	}
	if addr < m.VLow || addr > m.VHigh {
		m.raiseFault(VMFault)
		return false, Run
	}
	return true, Run
}

func handleMove(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b]
	return Run
}

func handleEq(m *Machine, a, b, c Word) State {
	m.Reg[a] = boolWord(m.Reg[b] == m.Reg[c])
	return Run
}

func handleGt(m *Machine, a, b, c Word) State {
	m.Reg[a] = boolWord(m.Reg[b] > m.Reg[c])
	return Run
}

func handleSgt(m *Machine, a, b, c Word) State {
	m.Reg[a] = boolWord(int32(m.Reg[b]) > int32(m.Reg[c]))
	return Run
}

func handleLt(m *Machine, a, b, c Word) State {
	m.Reg[a] = boolWord(m.Reg[b] < m.Reg[c])
	return Run
}

func handleSlt(m *Machine, a, b, c Word) State {
	m.Reg[a] = boolWord(int32(m.Reg[b]) < int32(m.Reg[c]))
	return Run
}

func handleCjmp(m *Machine, a, b, c Word) State {
	if m.Reg[a] != 0 {
		m.PC = m.Reg[b]
	}
	return Run
}

func handleLoad(m *Machine, a, b, c Word) State {
	addr := m.Reg[b]
	ok, onFail := m.checkAddr(addr)
	if !ok {
		return onFail
	}
	m.Reg[a] = m.Memory[addr]
	return Run
}

func handleStore(m *Machine, a, b, c Word) State {
	addr := m.Reg[a]
	ok, onFail := m.checkAddr(addr)
	if !ok {
		return onFail
	}
	m.Memory[addr] = m.Reg[b]
	return Run
}

func handleAdd(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] + m.Reg[c]
	return Run
}

func handleSadd(m *Machine, a, b, c Word) State {
	m.Reg[a] = uint32(int32(m.Reg[b]) + int32(m.Reg[c]))
	return Run
}

func handleSub(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] - m.Reg[c]
	return Run
}

// handleSsub computes $B - $C, true subtraction. See DESIGN.md Open
// Question #1 for why the historical $B + $C copy-paste variant is not
// reproduced.
func handleSsub(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] - m.Reg[c]
	return Run
}

func handleMult(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] * m.Reg[c]
	return Run
}

func handleSmult(m *Machine, a, b, c Word) State {
	m.Reg[a] = uint32(int32(m.Reg[b]) * int32(m.Reg[c]))
	return Run
}

// handleDivideV1 implements DIVIDE/SDIV for v1: division by zero is
// always terminal FAIL.
func handleDivideV1(m *Machine, a, b, c Word) State {
	if m.Reg[c] == 0 {
		return Fail
	}
	m.Reg[a] = m.Reg[b] / m.Reg[c]
	return Run
}

func handleSdivV1(m *Machine, a, b, c Word) State {
	if m.Reg[c] == 0 {
		return Fail
	}
	m.Reg[a] = uint32(int32(m.Reg[b]) / int32(m.Reg[c]))
	return Run
}

// handleDivideV2 implements DIVIDE for v2: division by zero in
// protected mode is terminal FAIL; in user mode it is DIV_ZERO_FAULT.
func handleDivideV2(m *Machine, a, b, c Word) State {
	if m.Reg[c] == 0 {
		return m.divZero()
	}
	m.Reg[a] = m.Reg[b] / m.Reg[c]
	return Run
}

func handleSdivV2(m *Machine, a, b, c Word) State {
	if m.Reg[c] == 0 {
		return m.divZero()
	}
	m.Reg[a] = uint32(int32(m.Reg[b]) / int32(m.Reg[c]))
	return Run
}

func (m *Machine) divZero() State {
	if m.Protected {
		return Fail
	}
	m.raiseFault(DivZeroFault)
	return Run
}

func handleAnd(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] & m.Reg[c]
	return Run
}

func handleOr(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] | m.Reg[c]
	return Run
}

func handleXor(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] ^ m.Reg[c]
	return Run
}

func handleNot(m *Machine, a, b, c Word) State {
	m.Reg[a] = ^m.Reg[b]
	return Run
}

func handleLshift(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] << (m.Reg[c] & 31)
	return Run
}

func handleRshift(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Reg[b] >> (m.Reg[c] & 31)
	return Run
}

func handleHlt(m *Machine, a, b, c Word) State {
	return Halt
}

func handleOut(m *Machine, a, b, c Word) State {
	v := m.Reg[a]
	if v > 255 {
		return Fail
	}
	if m.out == nil {
		m.lastErr = ErrNoByteSink
		return Run
	}
	if err := m.out.WriteByte(byte(v)); err != nil {
		m.lastErr = err
	}
	return Run
}

func handleIn(m *Machine, a, b, c Word) State {
	if m.in == nil {
		m.lastErr = ErrNoByteSource
		m.Reg[a] = 0xFFFFFFFF
		return Run
	}
	v, err := m.in.ReadByte()
	if err != nil {
		m.Reg[a] = 0xFFFFFFFF
		return Run
	}
	m.Reg[a] = Word(v)
	return Run
}

// handleLval is shared between variants: both interpret the load-value
// layout identically, modulo the immediate's bit width (handled by the
// codec, not here).
func handleLval(m *Machine, a, val Word) State {
	m.Reg[a] = val
	return Run
}

func handleUmode(m *Machine, a, b, c Word) State {
	target := m.Reg[a]
	m.Reg = m.LReg
	m.PC = target
	m.Protected = false
	return Run
}

func handleLload(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.LReg[b]
	return Run
}

func handleLstore(m *Machine, a, b, c Word) State {
	m.LReg[a] = m.Reg[b]
	return Run
}

func handleScall(m *Machine, a, b, c Word) State {
	m.Callback = m.Reg[a]
	return Run
}

func handleFmove(m *Machine, a, b, c Word) State {
	m.Reg[a] = Word(m.FaultCode)
	return Run
}

func handlePclload(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.LPC
	return Run
}

func handleSvmlow(m *Machine, a, b, c Word) State {
	m.VLow = m.Reg[a]
	return Run
}

func handleSvmhi(m *Machine, a, b, c Word) State {
	m.VHigh = m.Reg[a]
	return Run
}

func handleTload(m *Machine, a, b, c Word) State {
	m.Reg[a] = m.Timer
	return Run
}

func handleTstore(m *Machine, a, b, c Word) State {
	m.Timer = m.Reg[a]
	return Run
}

func handleTrg(m *Machine, a, b, c Word) State {
	if !m.Protected {
		m.raiseFault(TrgFault)
	}
	return Run
}

func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}

var v1StdHandlers = map[Word]stdHandler{
	opMove: handleMove, opEq: handleEq, opGt: handleGt, opSgt: handleSgt,
	opLt: handleLt, opSlt: handleSlt, opCjmp: handleCjmp, opLoad: handleLoad,
	opStore: handleStore, opAdd: handleAdd, opV1Sadd: handleSadd,
	opV1Ssub: handleSsub, opV1Sub: handleSub, opV1Mult: handleMult,
	opV1Smult: handleSmult, opV1Div: handleDivideV1, opV1Sdiv: handleSdivV1,
	opV1And: handleAnd, opV1Or: handleOr, opV1Xor: handleXor,
	opV1Not: handleNot, opV1Hlt: handleHlt, opV1Out: handleOut,
	opV1In: handleIn,
}

var v2StdHandlers = map[Word]stdHandler{
	opMove: handleMove, opEq: handleEq, opGt: handleGt, opSgt: handleSgt,
	opLt: handleLt, opSlt: handleSlt, opCjmp: handleCjmp, opLoad: handleLoad,
	opStore: handleStore, opAdd: handleAdd, opV2Sub: handleSub,
	opV2Mult: handleMult, opV2Smult: handleSmult, opV2Div: handleDivideV2,
	opV2Sdiv: handleSdivV2, opV2And: handleAnd, opV2Or: handleOr,
	opV2Xor: handleXor, opV2Not: handleNot, opV2Lshift: handleLshift,
	opV2Rshift: handleRshift, opV2Hlt: handleHlt, opV2Out: handleOut,
	opV2In: handleIn, opV2Umode: handleUmode, opV2Lload: handleLload,
	opV2Lstore: handleLstore, opV2Scall: handleScall, opV2Fmove: handleFmove,
	opV2Pclld: handlePclload, opV2Svmlo: handleSvmlow, opV2Svmhi: handleSvmhi,
	opV2Tload: handleTload, opV2Tstore: handleTstore, opV2Trg: handleTrg,
}

// stdHandlerFor returns the standard-layout handler for op under v, and
// whether one exists. LVAL is handled separately via handleLval since it
// uses a different operand layout.
func (v Variant) stdHandlerFor(op Word) (stdHandler, bool) {
	if v == V1 {
		h, ok := v1StdHandlers[op]
		return h, ok
	}
	h, ok := v2StdHandlers[op]
	return h, ok
}
