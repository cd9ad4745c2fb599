package vm

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math"
	"slices"
)

// Status is the machine run state. Halted and Faulted are terminal; no
// instruction executes once either is reached.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATE_RUNNING = Status(0) // running
	STATE_HALTED  = Status(1) // halted
	STATE_FAULTED = Status(2) // faulted
)

// Flags is the condition register, set by arithmetic and CMP.
type Flags struct {
	Zero     bool
	Negative bool
}

// InputFunc supplies the next INPUT value. Returning false means the input
// stream is exhausted.
type InputFunc func() (value int32, ok bool)

var _machine_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_LIMIT":    fmt.Sprintf("%v", STACK_LIMIT),
	"CALL_LIMIT":     fmt.Sprintf("%v", CALL_LIMIT),
}

// Defines returns the machine geometry constants by name, for front-ends
// and for the assembler's predefined equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

// Machine is the mutable world of a single run: registers, memory, flags,
// program counter, and the two stacks. Each run owns a fresh Machine; there
// is no process-wide state, so independent machines may run concurrently.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Program *Program // Program under execution; never mutated.

	Register [REGISTER_COUNT]int32 // General purpose registers.
	Memory   [MEMORY_SIZE]int32    // Data memory, zero-initialized.
	Flags    Flags                 // Condition flags.
	PC       int                   // Program counter, an Instructions index.
	Data     Stack                 // Data stack (PUSH/POP).
	Call     Stack                 // Call stack (CALL/RET return addresses).

	Steps     int // Instructions executed so far.
	StepLimit int // Fault with StepLimitExceeded after this many steps; 0 = unlimited.

	Input  InputFunc // Source for INPUT; nil means no input available.
	Output []int32   // Append-only PRINT output.

	Status Status // Current run state.
	Fault  *Fault // Set when Status is STATE_FAULTED.
}

// NewMachine creates a machine with freshly zeroed state, ready to run prog.
func NewMachine(prog *Program) (m *Machine) {
	m = &Machine{
		Program: prog,
		Data:    Stack{Limit: STACK_LIMIT},
		Call:    Stack{Limit: CALL_LIMIT},
	}

	return
}

// Reset returns the machine to its initial zeroed state, keeping the
// program, input source, and step limit.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("vm: reset")
	}

	clear(m.Register[:])
	clear(m.Memory[:])
	m.Flags = Flags{}
	m.PC = 0
	m.Data.Reset()
	m.Call.Reset()
	m.Steps = 0
	m.Output = nil
	m.Status = STATE_RUNNING
	m.Fault = nil
}

// Snapshot is an immutable copy of the observable machine state, exposed
// after every step for front-end visualization and carried by faults.
type Snapshot struct {
	Register [REGISTER_COUNT]int32
	Memory   [MEMORY_SIZE]int32
	Flags    Flags
	PC       int
	Data     []int32
	Call     []int32
	Steps    int
}

// Snapshot copies the current machine state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Register: m.Register,
		Memory:   m.Memory,
		Flags:    m.Flags,
		PC:       m.PC,
		Data:     slices.Clone(m.Data.Data),
		Call:     slices.Clone(m.Call.Data),
		Steps:    m.Steps,
	}
}

// Result is the terminal outcome of a run.
type Result struct {
	Status Status
	State  Snapshot
	Output []int32
	Fault  *Fault // nil unless Status is STATE_FAULTED
}

// Result captures the machine's current terminal outcome.
func (m *Machine) Result() *Result {
	return &Result{
		Status: m.Status,
		State:  m.Snapshot(),
		Output: slices.Clone(m.Output),
		Fault:  m.Fault,
	}
}

// fault moves the machine to the faulted state. Callers must not have
// mutated any state for the faulting instruction beforehand.
func (m *Machine) fault(kind FaultKind) *Fault {
	flt := &Fault{Kind: kind, PC: m.PC, State: m.Snapshot()}
	m.Status = STATE_FAULTED
	m.Fault = flt

	if m.Verbose {
		log.Printf("vm: %v", flt)
	}

	return flt
}

// Step executes a single fetch-decode-execute cycle. It returns the *Fault
// when the step faults, and nil otherwise; stepping a terminal machine is a
// no-op. Front-ends drive this directly for single-stepping.
func (m *Machine) Step() error {
	if m.Status != STATE_RUNNING {
		return nil
	}

	if m.StepLimit > 0 && m.Steps >= m.StepLimit {
		return m.fault(FAULT_STEP_LIMIT_EXCEEDED)
	}

	if m.PC < 0 || m.PC >= len(m.Program.Instructions) {
		return m.fault(FAULT_PC_OUT_OF_BOUNDS)
	}

	inst := m.Program.Instructions[m.PC]

	if m.Verbose {
		log.Printf("vm: %3d: %v", m.PC, inst)
	}

	m.Steps += 1

	return m.execute(inst)
}

// Run drives Step until the machine reaches a terminal state and returns
// the outcome.
func (m *Machine) Run() *Result {
	for m.Status == STATE_RUNNING {
		_ = m.Step()
	}

	return m.Result()
}

// value reads an operand: registers by index, immediates and addresses by
// their resolved value.
func (m *Machine) value(op Operand) (value int32, ok bool) {
	if op.Kind == KIND_REGISTER {
		index := int(op.Value)
		if index < 0 || index >= REGISTER_COUNT {
			return 0, false
		}
		return m.Register[index], true
	}

	return op.Value, true
}

// regIndex validates a destination register operand.
func regIndex(op Operand) (index int, ok bool) {
	index = int(op.Value)
	ok = op.Kind == KIND_REGISTER && index >= 0 && index < REGISTER_COUNT
	return
}

// setFlags updates the condition flags from a result value.
func (m *Machine) setFlags(value int32) {
	m.Flags.Zero = value == 0
	m.Flags.Negative = value < 0
}

// isqrt is the integer (floor) square root of a non-negative value.
func isqrt(value int32) int32 {
	root := int32(math.Sqrt(float64(value)))
	for root > 0 && root*root > value {
		root -= 1
	}
	for (root+1)*(root+1) <= value {
		root += 1
	}

	return root
}

// execute runs one decoded instruction. Operand validation happens before
// any state mutation, so a faulting instruction leaves the machine exactly
// as it was. Control-flow opcodes set next directly; everything else falls
// through to the advance-by-one default.
func (m *Machine) execute(inst Instruction) error {
	next := m.PC + 1

	switch inst.Op {
	case OP_NOP:
		// pass

	case OP_HALT:
		m.Status = STATE_HALTED
		return nil

	case OP_MOV:
		dst, ok := regIndex(inst.Operands[0])
		src, vok := m.value(inst.Operands[1])
		if !ok || !vok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		m.Register[dst] = src
		m.setFlags(src)

	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
		dst, ok := regIndex(inst.Operands[0])
		a, aok := m.value(inst.Operands[1])
		b, bok := m.value(inst.Operands[2])
		if !ok || !aok || !bok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		var result int32
		switch inst.Op {
		case OP_ADD:
			result = a + b
		case OP_SUB:
			result = a - b
		case OP_MUL:
			result = a * b
		case OP_DIV:
			if b == 0 {
				return m.fault(FAULT_DIVISION_BY_ZERO)
			}
			if a == math.MinInt32 && b == -1 {
				// Quotient wraps; the Go runtime would panic.
				result = math.MinInt32
			} else {
				result = a / b
			}
		case OP_MOD:
			if b == 0 {
				return m.fault(FAULT_DIVISION_BY_ZERO)
			}
			if a == math.MinInt32 && b == -1 {
				result = 0
			} else {
				result = a % b
			}
		}
		m.Register[dst] = result
		m.setFlags(result)

	case OP_SQRT:
		dst, ok := regIndex(inst.Operands[0])
		src, vok := m.value(inst.Operands[1])
		if !ok || !vok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if src < 0 {
			return m.fault(FAULT_NEGATIVE_SQRT)
		}
		root := isqrt(src)
		m.Register[dst] = root
		m.setFlags(root)

	case OP_CMP:
		a, aok := m.value(inst.Operands[0])
		b, bok := m.value(inst.Operands[1])
		if !aok || !bok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		m.setFlags(a - b)

	case OP_LOAD:
		dst, ok := regIndex(inst.Operands[0])
		addr, vok := m.value(inst.Operands[1])
		if !ok || !vok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if addr < 0 || addr >= MEMORY_SIZE {
			return m.fault(FAULT_MEMORY_OUT_OF_BOUNDS)
		}
		m.Register[dst] = m.Memory[addr]

	case OP_STORE:
		src, vok := m.value(inst.Operands[0])
		addr, aok := m.value(inst.Operands[1])
		if !vok || !aok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if addr < 0 || addr >= MEMORY_SIZE {
			return m.fault(FAULT_MEMORY_OUT_OF_BOUNDS)
		}
		m.Memory[addr] = src

	case OP_JMP:
		next = int(inst.Operands[0].Value)

	case OP_JZ, OP_JNZ:
		test, ok := m.value(inst.Operands[0])
		if !ok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if (inst.Op == OP_JZ) == (test == 0) {
			next = int(inst.Operands[1].Value)
		}

	case OP_JG:
		if !m.Flags.Zero && !m.Flags.Negative {
			next = int(inst.Operands[0].Value)
		}

	case OP_JL:
		if m.Flags.Negative {
			next = int(inst.Operands[0].Value)
		}

	case OP_CALL:
		if m.Call.Full() {
			return m.fault(FAULT_STACK_OVERFLOW)
		}
		m.Call.Push(int32(next))
		next = int(inst.Operands[0].Value)

	case OP_RET:
		addr, ok := m.Call.Pop()
		if !ok {
			return m.fault(FAULT_CALL_STACK_UNDERFLOW)
		}
		next = int(addr)

	case OP_PUSH:
		value, ok := m.value(inst.Operands[0])
		if !ok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if m.Data.Full() {
			return m.fault(FAULT_STACK_OVERFLOW)
		}
		m.Data.Push(value)

	case OP_POP:
		dst, ok := regIndex(inst.Operands[0])
		if !ok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		value, vok := m.Data.Pop()
		if !vok {
			return m.fault(FAULT_STACK_UNDERFLOW)
		}
		m.Register[dst] = value

	case OP_PRINT:
		value, ok := m.value(inst.Operands[0])
		if !ok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		m.Output = append(m.Output, value)
		if m.Verbose {
			log.Printf("vm: print %d", value)
		}

	case OP_INPUT:
		dst, ok := regIndex(inst.Operands[0])
		if !ok {
			return m.fault(FAULT_INVALID_REGISTER)
		}
		if m.Input == nil {
			return m.fault(FAULT_INPUT_EXHAUSTED)
		}
		value, vok := m.Input()
		if !vok {
			return m.fault(FAULT_INPUT_EXHAUSTED)
		}
		m.Register[dst] = value

	default:
		// Only reachable with a hand-constructed Program; the assembler
		// and UnmarshalBinary emit table opcodes only.
		return m.fault(FAULT_INVALID_OPCODE)
	}

	m.PC = next

	return nil
}
