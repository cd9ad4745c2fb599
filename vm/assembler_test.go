package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Assemble(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Instructions))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("8", asm.Equate["REGISTER_COUNT"])
	assert.Equal("256", asm.Equate["MEMORY_SIZE"])
	assert.Equal("64", asm.Equate["STACK_LIMIT"])
	assert.Equal("64", asm.Equate["CALL_LIMIT"])
}

func TestAssemblerEncoding(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"; comment-only line",
		"",
		"MOV R0, 5",
		"ADD R1, R1, R0",
		"PRINT R1",
		"HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		{OP_MOV, []Operand{Reg(0), Imm(5)}},
		{OP_ADD, []Operand{Reg(1), Reg(1), Reg(0)}},
		{OP_PRINT, []Operand{Reg(1)}},
		{OP_HALT, nil},
	}

	assert.Equal(expected, prog.Instructions)
	assert.Equal([]int{3, 4, 5, 6}, prog.Lines)
}

func TestAssemblerForwardReference(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"JMP end",
		"MOV R0, 1",
		"end:",
		"HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(2, prog.Symbols["end"])
	assert.Equal(Addr(2), prog.Instructions[0].Operands[0])
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"start:",
		"MOV R0, 1",
		"mid: more: HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	// Label-only lines consume no instruction index.
	assert.Equal(0, prog.Symbols["start"])
	assert.Equal(1, prog.Symbols["mid"])
	assert.Equal(1, prog.Symbols["more"])
	assert.Equal(2, len(prog.Instructions))
}

func TestAssemblerCase(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Mnemonics and registers are case-insensitive.
	prog, err := asm.AssembleString("mov r0, 5\nhalt")
	assert.NoError(err)
	assert.Equal(OP_MOV, prog.Instructions[0].Op)

	// Labels are case-sensitive.
	_, err = asm.AssembleString("Loop:\nJMP loop\nHALT")
	assert.ErrorIs(err, ErrUndefinedLabel)
}

func TestAssemblerEquates(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ LIMIT 3",
		"MOV R0, LIMIT",
		"MOV R1, $(LIMIT * 2 + 1)",
		"MOV R2, MEMORY_SIZE",
		"HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(Imm(3), prog.Instructions[0].Operands[1])
	assert.Equal(Imm(7), prog.Instructions[1].Operands[1])
	assert.Equal(Imm(256), prog.Instructions[2].Operands[1])
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("ANSWER", "42")

	prog, err := asm.AssembleString("MOV R0, ANSWER\nHALT")
	assert.NoError(err)
	assert.Equal(Imm(42), prog.Instructions[0].Operands[1])
}

func TestAssemblerNumberBases(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"MOV R0, 0x10",
		"MOV R1, -3",
		"MOV R2, 0b101",
		"HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal(Imm(0x10), prog.Instructions[0].Operands[1])
	assert.Equal(Imm(-3), prog.Instructions[1].Operands[1])
	assert.Equal(Imm(5), prog.Instructions[2].Operands[1])
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		prog string
		kind error
		line int
	}){
		{"dup:\ndup:\nHALT\n", ErrDuplicateLabel, 2},
		{"JMP nowhere\nHALT\n", ErrUndefinedLabel, 1},
		{"FROB R0\n", ErrUnknownInstruction, 1},
		{"MOV R0\n", ErrOperandMismatch, 1},
		{"MOV R0, R1, R2\n", ErrOperandMismatch, 1},
		{"MOV 5, R0\n", ErrOperandMismatch, 1},
		{"JMP R0\n", ErrOperandMismatch, 1},
		{"HALT R0\n", ErrOperandMismatch, 1},
		{"PUSH 5\n", ErrOperandMismatch, 1},
		{"MOV R9, 5\n", ErrBadRegister, 1},
		{"MOV R0, 99999999999\n", ErrBadNumber, 1},
		{"MOV R0, &x\n", ErrBadOperand, 1},
		{"9lives: HALT\n", ErrBadLabel, 1},
		{".equ\n", ErrEquateSyntax, 1},
		{".equ A\n", ErrEquateSyntax, 1},
		{".equ A 1\n.equ A 2\n", ErrEquateDuplicate, 2},
		{"HALT\n.equ LINENO 9\n", ErrEquateDuplicate, 2},
		{"JMP end\nHALT\nend:\n", ErrAddressRange, 1},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Assemble(strings.NewReader(entry.prog))
		assert.Nil(prog, entry.prog)
		assert.ErrorIs(err, entry.kind, entry.prog)

		var ea *ErrAssembly
		if assert.True(errors.As(err, &ea), entry.prog) {
			assert.Equal(entry.line, ea.LineNo, entry.prog)
		}
	}
}

func TestAssemblerErrExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.AssembleString("MOV R0, $(nonsense +)\nHALT")
	assert.Error(err)

	var ee ErrExpression
	assert.True(errors.As(err, &ee))
}

func TestAssemblerNoPartialProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.AssembleString("MOV R0, 1\nMOV R1, 2\nBLORT\n")
	assert.Error(err)
	assert.Nil(prog)
}

func TestAssemblerAddressesInRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"top:",
		"JZ R0, bottom",
		"CALL middle",
		"JMP top",
		"middle:",
		"RET",
		"bottom:",
		"HALT",
	}

	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	for _, inst := range prog.Instructions {
		for _, op := range inst.Operands {
			if op.Kind == KIND_ADDRESS {
				assert.GreaterOrEqual(op.Value, int32(0))
				assert.Less(int(op.Value), len(prog.Instructions))
			}
		}
	}
}
