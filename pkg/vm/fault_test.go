package vm

import "testing"

// stepUntil runs m.Step() up to maxSteps times, stopping early once pred
// reports true. It fails the test if pred never becomes true in time.
func stepUntil(t *testing.T, m *Machine, maxSteps int, pred func() bool) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if pred() {
			return
		}
		m.Step()
	}
	if !pred() {
		t.Fatalf("condition not reached within %d steps", maxSteps)
	}
}

// TestScenarioProtectedModeFaultRoundTrip implements §8 scenario 6: a
// supervisor program configures the fault callback, the user memory
// window, and the timer, primes the lookaside register directly (the
// cleanest way to get a deterministic lreg[0] across the UMODE
// register-clobber), then drops to user mode at address 100 where a
// privileged HLT immediately faults back to the supervisor.
func TestScenarioProtectedModeFaultRoundTrip(t *testing.T) {
	const (
		callbackAddr = 10
		userAddr     = 100
		vlow         = 100
		vhigh        = 199
		timerInit    = 1_000_000
	)
	words := []Word{
		EncodeLoadValue(V2, opV2Lval, 0, callbackAddr),
		EncodeStandard(V2, opV2Scall, 0, 0, 0),
		EncodeLoadValue(V2, opV2Lval, 0, vlow),
		EncodeStandard(V2, opV2Svmlo, 0, 0, 0),
		EncodeLoadValue(V2, opV2Lval, 0, vhigh),
		EncodeStandard(V2, opV2Svmhi, 0, 0, 0),
		EncodeLoadValue(V2, opV2Lval, 0, timerInit),
		EncodeStandard(V2, opV2Tstore, 0, 0, 0),
		EncodeLoadValue(V2, opV2Lval, 0, userAddr),
		EncodeStandard(V2, opV2Lstore, 0, 0, 0), // lreg[0] = reg[0] = 100
		EncodeStandard(V2, opV2Umode, 0, 0, 0),  // pc = reg[0] = 100; reg = lreg
	}
	img := make([]Word, userAddr+1)
	copy(img, words)
	img[userAddr] = EncodeStandard(V2, opV2Hlt, 0, 0, 0)

	buf := buildImage(Word(len(img)), img)
	m := Load(V2, buf, nil, nil)
	assert(t, m.State == Run, "load failed: %s", m.State)

	stepUntil(t, m, 64, func() bool { return m.FaultCode == InstrFault })

	assert(t, m.Protected, "want protected mode after fault")
	assert(t, m.PC == callbackAddr, "want pc=%d got %d", callbackAddr, m.PC)
	assert(t, m.LPC == userAddr, "want lpc=%d got %d", userAddr, m.LPC)
	assert(t, m.FaultCode == InstrFault, "want INSTR_FAULT got %s", m.FaultCode)
	assert(t, m.LReg[0] == userAddr, "want lreg[0]=%d got %d", userAddr, m.LReg[0])
	assert(t, m.Timer == timerInit, "want timer restored to %d got %d", timerInit, m.Timer)
}

func TestPrivilegedOpcodeInUserModeFaultsWithoutSideEffects(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: false, VLow: 0, VHigh: 7, Timer: 100,
	}
	m.Memory[0] = EncodeStandard(V2, opV2Out, 0, 0, 0)
	m.Reg[0] = 42
	before := m.Reg

	s := m.Step()
	assert(t, s == Run, "want Run got %s", s)
	assert(t, m.FaultCode == InstrFault, "want INSTR_FAULT got %s", m.FaultCode)
	assert(t, m.Reg == before, "privileged fault must not mutate user registers: %+v vs %+v", m.Reg, before)
	assert(t, m.Protected, "want protected after fault")
}

func TestTrgFaultFromUserMode(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: false, VLow: 0, VHigh: 7, Timer: 100,
	}
	m.Memory[0] = EncodeStandard(V2, opV2Trg, 0, 0, 0)

	m.Step()
	assert(t, m.FaultCode == TrgFault, "want TRG_FAULT got %s", m.FaultCode)
	assert(t, m.LPC == 0, "want lpc=0 got %d", m.LPC)
}

func TestTrgNoEffectInSupervisorMode(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: true,
	}
	m.Memory[0] = EncodeStandard(V2, opV2Trg, 0, 0, 0)

	s := m.Step()
	assert(t, s == Run, "want Run got %s", s)
	assert(t, m.FaultCode == NoFault, "want no fault, got %s", m.FaultCode)
	assert(t, m.Protected, "should remain protected")
}

func TestTimeFaultOnZeroTimer(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: false, VLow: 0, VHigh: 7, Timer: 0,
	}
	m.Memory[0] = EncodeStandard(V2, opMove, 0, 1, 0)
	m.Reg[1] = 99
	m.Reg[0] = 0

	m.Step()
	assert(t, m.FaultCode == TimeFault, "want TIME_FAULT got %s", m.FaultCode)
	assert(t, m.Reg[0] == 0, "MOVE must not have executed: reg0=%d", m.Reg[0])
}

func TestVMExecFaultOutsideWindow(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: false, VLow: 2, VHigh: 4, PC: 0,
	}
	s := m.Step()
	assert(t, s == Run, "want Run got %s", s)
	assert(t, m.FaultCode == VMExecFault, "want VM_EXEC_FAULT got %s", m.FaultCode)
}

func TestVMFaultOnOutOfWindowMemoryAccess(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 1000, Memory: make([]Word, 1000), State: Run,
		Protected: false, VLow: 100, VHigh: 199, PC: 100, Timer: 100,
	}
	// LOAD r1, r0 where r0 holds an address outside [vlow, vhigh].
	m.Memory[100] = EncodeStandard(V2, opLoad, 1, 0, 0)
	m.Reg[0] = 50

	m.Step()
	assert(t, m.FaultCode == VMFault, "want VM_FAULT got %s", m.FaultCode)
}

func TestDivZeroFaultInUserMode(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: false, VLow: 0, VHigh: 7, Timer: 100,
	}
	m.Memory[0] = EncodeStandard(V2, opV2Div, 2, 0, 1)
	m.Reg[0], m.Reg[1] = 10, 0

	m.Step()
	assert(t, m.FaultCode == DivZeroFault, "want DIV_ZERO_FAULT got %s", m.FaultCode)
}

func TestDivZeroTerminalInProtectedMode(t *testing.T) {
	m := &Machine{
		Variant: V2, MemorySize: 8, Memory: make([]Word, 8), State: Run,
		Protected: true,
	}
	m.Memory[0] = EncodeStandard(V2, opV2Div, 2, 0, 1)
	m.Reg[0], m.Reg[1] = 10, 0

	s := m.Step()
	assert(t, s == Fail, "want FAIL got %s", s)
}
