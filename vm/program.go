package vm

import (
	"bytes"
	"encoding/binary"
	"iter"
	"maps"
	"slices"
)

// Program is an assembled instruction sequence. It is immutable after
// assembly and may be shared read-only across concurrently running machines.
// Symbols and Lines are carried for diagnostics only; execution reads
// Instructions alone.
type Program struct {
	Instructions []Instruction
	Symbols      map[string]int // label -> instruction index
	Lines        []int          // instruction index -> source line number
}

// LineNo returns the source line number for an instruction index, or 0 when
// unknown (e.g. a deserialized program without a line map).
func (prog *Program) LineNo(pc int) int {
	if pc < 0 || pc >= len(prog.Lines) {
		return 0
	}

	return prog.Lines[pc]
}

// Codes iterates over (index, instruction) pairs.
func (prog *Program) Codes() iter.Seq2[int, Instruction] {
	return func(yield func(pc int, inst Instruction) bool) {
		for pc, inst := range prog.Instructions {
			if !yield(pc, inst) {
				return
			}
		}
	}
}

// Binary container layout: a magic word, then little-endian 32-bit words.
// The word-oriented little-endian layout follows the machine's native
// instruction encoding.
const (
	binaryMagic   = uint32(0x4D564D42) // "BMVM"
	binaryVersion = uint32(1)
)

// MarshalBinary serializes the program, including the symbol table and line
// map, so that the round trip is lossless.
func (prog *Program) MarshalBinary() (data []byte, err error) {
	buf := &bytes.Buffer{}

	w32 := func(v uint32) {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], v)
		buf.Write(word[:])
	}

	w32(binaryMagic)
	w32(binaryVersion)

	w32(uint32(len(prog.Instructions)))
	for _, inst := range prog.Instructions {
		w32(uint32(inst.Op))
		w32(uint32(len(inst.Operands)))
		for _, op := range inst.Operands {
			w32(uint32(op.Kind))
			w32(uint32(op.Value))
		}
	}

	w32(uint32(len(prog.Symbols)))
	for _, name := range slices.Sorted(maps.Keys(prog.Symbols)) {
		w32(uint32(len(name)))
		buf.WriteString(name)
		for pad := (4 - len(name)%4) % 4; pad > 0; pad-- {
			buf.WriteByte(0)
		}
		w32(uint32(prog.Symbols[name]))
	}

	w32(uint32(len(prog.Lines)))
	for _, line := range prog.Lines {
		w32(uint32(line))
	}

	data = buf.Bytes()
	return
}

// UnmarshalBinary deserializes a program produced by MarshalBinary. Every
// instruction is re-validated against the opcode table so that a corrupted
// image cannot put an out-of-range register or address into the machine.
func (prog *Program) UnmarshalBinary(data []byte) (err error) {
	rd := &wordReader{data: data}

	if rd.u32() != binaryMagic || rd.u32() != binaryVersion {
		return ErrBadBinary
	}

	// Counts come from the wire; an instruction is at least two words, so
	// any count the remaining bytes could not encode is rejected before
	// allocation.
	count := int(rd.u32())
	if count < 0 || count > rd.remaining()/2 {
		return ErrBadBinary
	}
	instructions := make([]Instruction, 0, count)
	for range count {
		op := Opcode(rd.u32())
		arity := int(rd.u32())
		sig, ok := opcodeSignature(op)
		if !ok || arity != len(sig.args) {
			return ErrBadBinary
		}
		inst := Instruction{Op: op}
		for n := range arity {
			kind := OperandKind(rd.u32())
			value := int32(rd.u32())
			if !operandAllowed(sig.args[n], kind) {
				return ErrBadBinary
			}
			if kind == KIND_REGISTER && (value < 0 || value >= REGISTER_COUNT) {
				return ErrBadBinary
			}
			if kind == KIND_ADDRESS && (value < 0 || value >= int32(count)) {
				return ErrBadBinary
			}
			inst.Operands = append(inst.Operands, Operand{Kind: kind, Value: value})
		}
		instructions = append(instructions, inst)
	}

	nsyms := int(rd.u32())
	if nsyms < 0 || nsyms > rd.remaining()/2 {
		return ErrBadBinary
	}
	symbols := make(map[string]int, nsyms)
	for range nsyms {
		nameLen := int(rd.u32())
		name := rd.str(nameLen)
		addr := int(rd.u32())
		if name == "" || addr < 0 || addr > count {
			return ErrBadBinary
		}
		symbols[name] = addr
	}

	nlines := int(rd.u32())
	if nlines < 0 || nlines > rd.remaining() {
		return ErrBadBinary
	}
	lines := make([]int, 0, nlines)
	for range nlines {
		lines = append(lines, int(rd.u32()))
	}

	if rd.failed {
		return ErrBadBinary
	}

	prog.Instructions = instructions
	prog.Symbols = symbols
	prog.Lines = lines

	return
}

func operandAllowed(mask argMask, kind OperandKind) bool {
	switch kind {
	case KIND_REGISTER:
		return mask&argReg != 0
	case KIND_IMMEDIATE:
		return mask&argImm != 0
	case KIND_ADDRESS:
		return mask&argAddr != 0
	}

	return false
}

// wordReader consumes little-endian 32-bit words, tracking truncation in a
// single flag instead of threading errors through every read.
type wordReader struct {
	data   []byte
	failed bool
}

// remaining reports how many whole words are left to read.
func (rd *wordReader) remaining() int {
	return len(rd.data) / 4
}

func (rd *wordReader) u32() uint32 {
	if len(rd.data) < 4 {
		rd.failed = true
		return 0
	}

	v := binary.LittleEndian.Uint32(rd.data[:4])
	rd.data = rd.data[4:]
	return v
}

func (rd *wordReader) str(length int) string {
	padded := (length + 3) &^ 3
	if length < 0 || len(rd.data) < padded {
		rd.failed = true
		return ""
	}

	s := string(rd.data[:length])
	rd.data = rd.data[padded:]
	return s
}
