package vm

import (
	"bufio"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates, available to every program.
var sysEquate = func() map[string]string {
	equ := map[string]string{"LINENO": "0"}
	maps.Insert(equ, Defines())
	return equ
}()

// Assembler translates assembly text into a Program. Two passes: the first
// discovers labels and statements, the second encodes instructions against
// the opcode table. Forward label references therefore resolve for free.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Equate  map[string]string // Map of equates, rebuilt per Assemble call.

	predefine map[string]string // Caller predefines.
}

// Predefine defines an equate visible to every subsequent Assemble call.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// statement is one instruction-producing source line, labels stripped and
// equates substituted, awaiting encoding in pass 2.
type statement struct {
	lineNo int
	line   string
	words  []string
}

var (
	reLabel    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reRegister = regexp.MustCompile(`^[Rr][0-9]+$`)
	reParen    = regexp.MustCompile(`\$\([^\$]*\)`)
)

// AssembleString assembles a source string.
func (asm *Assembler) AssembleString(source string) (prog *Program, err error) {
	return asm.Assemble(strings.NewReader(source))
}

// Assemble parses an input stream into a Program. The first error aborts
// assembly; a partial Program is never returned.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	asm.Equate = maps.Clone(sysEquate)
	for equ, val := range asm.predefine {
		asm.Equate[equ] = val
	}

	symbols := map[string]int{}
	var stmts []statement

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrAssembly{LineNo: lineno, Line: line, Err: err}
		}
	}()

	// Pass 1: tokenize, collect label -> instruction index bindings.
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		text_comment := strings.SplitN(text, ";", 2)
		line = strings.TrimSpace(text_comment[0])
		if len(line) == 0 {
			continue
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		// Label definitions bind to the next instruction index. A
		// label-only line consumes no index.
		for len(words) > 0 && strings.HasSuffix(words[0], ":") {
			label := words[0][:len(words[0])-1]
			if !reLabel.MatchString(label) {
				err = ErrBadLabel
				return
			}
			if _, ok := symbols[label]; ok {
				err = ErrDuplicateLabel
				return
			}
			symbols[label] = len(stmts)
			words = words[1:]
		}

		if len(words) == 0 {
			continue
		}

		stmts = append(stmts, statement{lineNo: lineno, line: line, words: words})
	}
	if err = scanner.Err(); err != nil {
		return
	}

	// Pass 2: encode against the opcode table; symbols are read-only now.
	prog = &Program{
		Instructions: make([]Instruction, 0, len(stmts)),
		Symbols:      symbols,
		Lines:        make([]int, 0, len(stmts)),
	}

	for _, st := range stmts {
		var inst Instruction
		inst, err = asm.encode(st.words, symbols, len(stmts))
		if err != nil {
			lineno, line = st.lineNo, st.line
			prog = nil
			return
		}
		prog.Instructions = append(prog.Instructions, inst)
		prog.Lines = append(prog.Lines, st.lineNo)
	}

	return
}

// parseLine expands $() expressions and equates, handles .equ, and splits
// the line into words on spaces, tabs, and commas.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations.
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for n, word := range words {
		if equate, ok := asm.Equate[word]; ok {
			words[n] = equate
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations over the integer equates.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, _err := strconv.ParseInt(str, 0, 64)
		if _err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrExpression(expr)
		return
	}

	return
}

// encode resolves one statement into an Instruction using the closed opcode
// table and the pass-1 symbol table.
func (asm *Assembler) encode(words []string, symbols map[string]int, count int) (inst Instruction, err error) {
	sig, ok := mnemonicTable[strings.ToUpper(words[0])]
	if !ok {
		err = ErrUnknownInstruction
		return
	}

	args := words[1:]
	if len(args) != len(sig.args) {
		err = ErrOperandMismatch
		return
	}

	inst.Op = sig.op
	for n, word := range args {
		var op Operand
		op, err = asm.operand(word, sig.args[n], symbols, count)
		if err != nil {
			return
		}
		inst.Operands = append(inst.Operands, op)
	}

	return
}

// operand classifies and validates a single operand word against the kinds
// the signature slot accepts.
func (asm *Assembler) operand(word string, mask argMask, symbols map[string]int, count int) (op Operand, err error) {
	switch {
	case reRegister.MatchString(word):
		if mask&argReg == 0 {
			err = ErrOperandMismatch
			return
		}
		var index int64
		index, err = strconv.ParseInt(word[1:], 10, 32)
		if err != nil || index >= REGISTER_COUNT {
			err = ErrBadRegister
			return
		}
		op = Reg(int(index))

	case word[0] == '-' || word[0] == '+' || (word[0] >= '0' && word[0] <= '9'):
		if mask&argImm == 0 {
			err = ErrOperandMismatch
			return
		}
		var value int64
		value, err = strconv.ParseInt(word, 0, 32)
		if err != nil {
			err = ErrBadNumber
			return
		}
		op = Imm(int32(value))

	case reLabel.MatchString(word):
		if mask&argAddr == 0 {
			err = ErrOperandMismatch
			return
		}
		index, ok := symbols[word]
		if !ok {
			err = ErrUndefinedLabel
			return
		}
		if index >= count {
			// A trailing label binds one past the last instruction;
			// no address operand may reach execution dangling.
			err = ErrAddressRange
			return
		}
		op = Addr(index)

	default:
		err = ErrBadOperand
	}

	return
}
