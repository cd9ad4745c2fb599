// Package vm implements the assembler and processor for the minivm teaching
// machine.
//
// The machine consists of eight 32-bit signed general-purpose registers
// (R0-R7), a 256-word data memory, Zero/Negative flags, a 64-entry data
// stack, and a 64-entry call stack. Programs are sequences of fixed-arity
// instructions produced by the two-pass assembler; execution is a
// fetch-decode-execute loop that terminates in either a halted or a faulted
// state.
//
// # Assembly language
//
// One statement per line. A ';' starts a comment. A statement is an optional
// chain of label definitions ("name:") followed by at most one instruction:
// a mnemonic and its comma- or space-separated operands. ".equ NAME VALUE"
// defines a substitution constant, and "$( ... )" evaluates a compile-time
// integer expression over the defined constants. Mnemonics and register
// names are case-insensitive; labels are case-sensitive.
//
// Operand kinds are: register (R0-R7), immediate (integer literal, base
// prefixes accepted), and address (a label, resolved at assembly time).
//
// # Instruction set
//
//	MOV   dst, src        dst <- src, flags from result         src: reg|imm
//	LOAD  dst, addr       dst <- mem[addr]                      addr: reg|imm
//	STORE src, addr       mem[addr] <- src                      addr: reg|imm
//	ADD   d, a, b         d <- a + b, flags                     a, b: reg|imm
//	SUB   d, a, b         d <- a - b, flags
//	MUL   d, a, b         d <- a * b, flags
//	DIV   d, a, b         d <- a / b, flags; b = 0 faults
//	MOD   d, a, b         d <- a % b, flags; b = 0 faults
//	SQRT  dst, src        dst <- isqrt(src), flags; src < 0 faults
//	CMP   a, b            flags from a - b, no store            a, b: reg|imm
//	JMP   target          pc <- target                          target: label
//	JZ    r, target       pc <- target if r == 0
//	JNZ   r, target       pc <- target if r != 0
//	JG    target          pc <- target if last result > 0 (flags)
//	JL    target          pc <- target if last result < 0 (flags)
//	CALL  target          push pc+1 on call stack, pc <- target
//	RET                   pc <- pop call stack
//	PUSH  r               push r on data stack
//	POP   r               r <- pop data stack
//	PRINT v               append v to the output sequence       v: reg|imm
//	INPUT r               r <- next input value
//	HALT                  stop, state Halted
//	NOP                   no effect
//
// Arithmetic is two's-complement with wraparound. JZ/JNZ test a register
// directly; JG/JL consume the flags left by the most recent arithmetic or
// CMP instruction.
package vm
