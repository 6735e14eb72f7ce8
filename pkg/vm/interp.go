package vm

// flusher is implemented by byte sinks that buffer writes, such as
// *bufio.Writer. OUT need not flush per instruction, but Run must flush
// before reporting Halt.
type flusher interface {
	Flush() error
}

// Run drives the interpreter loop from §4.2 until a terminal state is
// produced, then returns it. If m.State is already non-Run (set by Load
// to Fail or Mem), Run returns that immediately without executing
// anything.
//
// Run never returns Run: the loop below only exits via a terminal State
// from Step, so RUN escaping to a caller is structurally impossible here.
// Intern exists in the State enum for hosts that assemble a Machine by
// hand (skipping Load/Run) and need a value to report if their own loop
// ever does terminate without a terminal State.
func (m *Machine) Run() State {
	if m.State != Run {
		return m.State
	}
	for {
		s := m.Step()
		if s != Run {
			return s
		}
	}
}

func (m *Machine) flushOut() {
	if f, ok := m.out.(flusher); ok {
		_ = f.Flush()
	}
}

// Step executes exactly one iteration of the interpreter loop: the
// execution-bounds check, fetch, PC increment, timer decrement (v2 user
// mode), dispatch, and handler execution. It returns Run if the loop
// should continue (including when the iteration did nothing but deliver
// a fault), or a terminal State. Whenever it returns a terminal State, it
// first records it into m.State and flushes the byte sink, so a host
// driving Step directly (the CLI's -d flag) observes exactly the same
// end-of-run behavior as Run.
//
// Step is exported so a host can single-step without the core depending
// on any terminal or readline library.
func (m *Machine) Step() State {
	ok, term := m.execBoundsOK()
	if !ok {
		if term != Run {
			m.terminate(term)
		}
		return term
	}

	pc := m.PC
	instr := m.Memory[pc]
	if m.Trace != nil {
		m.Trace(pc, instr)
	}
	m.PC++

	userMode := m.Variant == V2 && !m.Protected
	if userMode {
		pre := m.Timer
		m.Timer--
		if pre == 0 {
			m.raiseFault(TimeFault)
			return Run
		}
	}

	s := m.dispatch(instr)
	if s != Run {
		m.terminate(s)
	}
	return s
}

func (m *Machine) terminate(s State) {
	m.State = s
	m.flushOut()
}

// execBoundsOK implements §4.2 step 1. ok is false when the iteration
// must not fetch this cycle. When ok is false, term is either Fail (v1,
// or v2 protected mode, PC out of memory bounds — the caller must return
// this terminal state) or Run (a v2 user-mode fault was just raised by
// raiseFault — the caller continues the loop with the redirected PC).
func (m *Machine) execBoundsOK() (ok bool, term State) {
	if m.Variant == V1 {
		if m.PC >= m.MemorySize {
			return false, Fail
		}
		return true, Run
	}
	if m.Protected {
		if m.PC >= m.MemorySize {
			return false, Fail
		}
		return true, Run
	}
	if m.PC < m.VLow || m.PC > m.VHigh {
		m.raiseFault(VMExecFault)
		return false, Run
	}
	return true, Run
}

// dispatch decodes instr and runs the selected handler. Step only calls
// dispatch once the execution-bounds check and timer have passed.
func (m *Machine) dispatch(instr Word) State {
	opBits := m.Variant.opBits()
	op := instr >> (32 - opBits)

	if m.Variant == V2 && !m.Protected && privileged(op) {
		m.raiseFault(InstrFault)
		return Run
	}

	if m.Variant.isLVal(op) {
		lv := decodeLVal(instr, opBits)
		return handleLval(m, lv.a, lv.val)
	}

	h, ok := m.Variant.stdHandlerFor(op)
	if !ok {
		return m.unknownOpcode()
	}
	std := decodeStd(instr, opBits)
	return h(m, std.a, std.b, std.c)
}

func (m *Machine) unknownOpcode() State {
	if m.Variant == V1 || m.Protected {
		return Fail
	}
	m.raiseFault(WordFault)
	return Run
}
