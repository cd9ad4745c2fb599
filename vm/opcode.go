package vm

import (
	"fmt"
	"strings"
)

// Machine geometry. Published to front-ends via Defines() and to assembly
// source as predefined equates.
const (
	REGISTER_COUNT = 8   // General purpose registers R0..R7.
	MEMORY_SIZE    = 256 // Data memory words.
	STACK_LIMIT    = 64  // Maximum data stack depth.
	CALL_LIMIT     = 64  // Maximum call stack depth.
)

// Opcode is the decoded, closed-set instruction tag.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_NOP   = Opcode(0)  // NOP
	OP_MOV   = Opcode(1)  // MOV
	OP_LOAD  = Opcode(2)  // LOAD
	OP_STORE = Opcode(3)  // STORE
	OP_ADD   = Opcode(4)  // ADD
	OP_SUB   = Opcode(5)  // SUB
	OP_MUL   = Opcode(6)  // MUL
	OP_DIV   = Opcode(7)  // DIV
	OP_MOD   = Opcode(8)  // MOD
	OP_SQRT  = Opcode(9)  // SQRT
	OP_CMP   = Opcode(10) // CMP
	OP_JMP   = Opcode(11) // JMP
	OP_JZ    = Opcode(12) // JZ
	OP_JNZ   = Opcode(13) // JNZ
	OP_JG    = Opcode(14) // JG
	OP_JL    = Opcode(15) // JL
	OP_CALL  = Opcode(16) // CALL
	OP_RET   = Opcode(17) // RET
	OP_PUSH  = Opcode(18) // PUSH
	OP_POP   = Opcode(19) // POP
	OP_PRINT = Opcode(20) // PRINT
	OP_INPUT = Opcode(21) // INPUT
	OP_HALT  = Opcode(22) // HALT
)

// OperandKind tags the variant held by an Operand.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	KIND_REGISTER  = OperandKind(0) // register
	KIND_IMMEDIATE = OperandKind(1) // immediate
	KIND_ADDRESS   = OperandKind(2) // address
)

// Operand is a resolved instruction operand. Labels never survive assembly;
// an address operand already holds the target instruction index.
type Operand struct {
	Kind  OperandKind
	Value int32
}

// Reg makes a register operand.
func Reg(index int) Operand {
	return Operand{Kind: KIND_REGISTER, Value: int32(index)}
}

// Imm makes an immediate operand.
func Imm(value int32) Operand {
	return Operand{Kind: KIND_IMMEDIATE, Value: value}
}

// Addr makes an address operand.
func Addr(index int) Operand {
	return Operand{Kind: KIND_ADDRESS, Value: int32(index)}
}

// String returns the assembly spelling of the operand.
func (op Operand) String() string {
	switch op.Kind {
	case KIND_REGISTER:
		return fmt.Sprintf("R%d", op.Value)
	case KIND_ADDRESS:
		return fmt.Sprintf("@%d", op.Value)
	default:
		return fmt.Sprintf("%d", op.Value)
	}
}

// Instruction is one decoded statement: an opcode and its fixed-arity
// operand list.
type Instruction struct {
	Op       Opcode
	Operands []Operand
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Op.String()
	}

	args := make([]string, len(inst.Operands))
	for n, op := range inst.Operands {
		args[n] = op.String()
	}

	return inst.Op.String() + " " + strings.Join(args, ", ")
}

// argMask is the set of operand kinds a signature slot accepts.
type argMask int

const (
	argReg argMask = 1 << iota
	argImm
	argAddr
)

// signature is one entry of the closed opcode table: the opcode and the
// accepted kinds for each operand position.
type signature struct {
	op   Opcode
	args []argMask
}

// mnemonicTable is the closed opcode table, keyed by upper-case mnemonic.
var mnemonicTable = map[string]signature{
	"NOP":   {OP_NOP, nil},
	"MOV":   {OP_MOV, []argMask{argReg, argReg | argImm}},
	"LOAD":  {OP_LOAD, []argMask{argReg, argReg | argImm}},
	"STORE": {OP_STORE, []argMask{argReg, argReg | argImm}},
	"ADD":   {OP_ADD, []argMask{argReg, argReg | argImm, argReg | argImm}},
	"SUB":   {OP_SUB, []argMask{argReg, argReg | argImm, argReg | argImm}},
	"MUL":   {OP_MUL, []argMask{argReg, argReg | argImm, argReg | argImm}},
	"DIV":   {OP_DIV, []argMask{argReg, argReg | argImm, argReg | argImm}},
	"MOD":   {OP_MOD, []argMask{argReg, argReg | argImm, argReg | argImm}},
	"SQRT":  {OP_SQRT, []argMask{argReg, argReg | argImm}},
	"CMP":   {OP_CMP, []argMask{argReg | argImm, argReg | argImm}},
	"JMP":   {OP_JMP, []argMask{argAddr}},
	"JZ":    {OP_JZ, []argMask{argReg, argAddr}},
	"JNZ":   {OP_JNZ, []argMask{argReg, argAddr}},
	"JG":    {OP_JG, []argMask{argAddr}},
	"JL":    {OP_JL, []argMask{argAddr}},
	"CALL":  {OP_CALL, []argMask{argAddr}},
	"RET":   {OP_RET, nil},
	"PUSH":  {OP_PUSH, []argMask{argReg}},
	"POP":   {OP_POP, []argMask{argReg}},
	"PRINT": {OP_PRINT, []argMask{argReg | argImm}},
	"INPUT": {OP_INPUT, []argMask{argReg}},
	"HALT":  {OP_HALT, nil},
}

// opcodeSignature returns the signature for an opcode, for validating
// instructions that did not come through the assembler (e.g. deserialized).
func opcodeSignature(op Opcode) (sig signature, ok bool) {
	sig, ok = opcodeSig[op]
	return
}

var opcodeSig = func() map[Opcode]signature {
	m := make(map[Opcode]signature, len(mnemonicTable))
	for _, sig := range mnemonicTable {
		m[sig.op] = sig
	}
	return m
}()
