package vm

// FaultKind classifies a terminal execution error. Faults are disjoint from
// assembly errors: a fault can only arise while a program runs, and always
// ends the run.
type FaultKind int

//go:generate go tool stringer -linecomment -type=FaultKind
const (
	FAULT_NONE                  = FaultKind(0)  // none
	FAULT_PC_OUT_OF_BOUNDS      = FaultKind(1)  // program counter out of bounds
	FAULT_DIVISION_BY_ZERO      = FaultKind(2)  // division by zero
	FAULT_MEMORY_OUT_OF_BOUNDS  = FaultKind(3)  // memory out of bounds
	FAULT_CALL_STACK_UNDERFLOW  = FaultKind(4)  // call stack underflow
	FAULT_STACK_OVERFLOW        = FaultKind(5)  // stack overflow
	FAULT_STACK_UNDERFLOW       = FaultKind(6)  // stack underflow
	FAULT_INPUT_EXHAUSTED       = FaultKind(7)  // input exhausted
	FAULT_STEP_LIMIT_EXCEEDED   = FaultKind(8)  // step limit exceeded
	FAULT_INVALID_REGISTER      = FaultKind(9)  // invalid register
	FAULT_NEGATIVE_SQRT         = FaultKind(10) // negative sqrt
	FAULT_INVALID_OPCODE        = FaultKind(11) // invalid opcode
)

// Fault is the structured value describing why a run terminated abnormally.
// PC is the index of the faulting instruction and State the machine state as
// of just before it executed; the faulting instruction itself modifies
// nothing.
type Fault struct {
	Kind  FaultKind
	PC    int
	State Snapshot
}

func (flt *Fault) Error() string {
	return f("fault: %v at instruction %d", flt.Kind, flt.PC)
}

// Is reports kind equality, so errors.Is(err, &Fault{Kind: k}) matches any
// fault of kind k.
func (flt *Fault) Is(err error) bool {
	other, ok := err.(*Fault)
	return ok && other.Kind == flt.Kind
}
