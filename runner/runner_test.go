package runner

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minivm/minivm/vm"
)

func TestRunSource(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"MOV R0, 5",
		"MOV R1, 0",
		"loop:",
		"ADD R1, R1, R0",
		"SUB R0, R0, 1",
		"JNZ R0, loop",
		"PRINT R1",
		"HALT",
	}, "\n")

	result, err := RunSource(source)
	assert.NoError(err)
	assert.Equal(vm.STATE_HALTED, result.Status)
	assert.Equal([]int32{15}, result.Output)
}

func TestRunSourceAssemblyError(t *testing.T) {
	assert := assert.New(t)

	result, err := RunSource("JMP nowhere\nHALT")
	assert.Nil(result)
	assert.ErrorIs(err, vm.ErrUndefinedLabel)
}

func TestRunnerOutput(t *testing.T) {
	assert := assert.New(t)

	asm := &vm.Assembler{}
	prog, err := asm.AssembleString("PRINT 1\nPRINT -2\nPRINT 3\nHALT")
	assert.NoError(err)

	out := &bytes.Buffer{}
	run := New(prog)
	run.Output = out

	result, err := run.Run()
	assert.NoError(err)
	assert.Equal(vm.STATE_HALTED, result.Status)
	assert.Equal("1\n-2\n3\n", out.String())
}

func TestRunnerInput(t *testing.T) {
	assert := assert.New(t)

	asm := &vm.Assembler{}
	prog, err := asm.AssembleString("INPUT R0\nINPUT R1\nADD R2, R0, R1\nPRINT R2\nHALT")
	assert.NoError(err)

	run := New(prog)
	run.Input = strings.NewReader("3 4")

	result, err := run.Run()
	assert.NoError(err)
	assert.Equal([]int32{7}, result.Output)
	assert.Equal(int32(7), result.State.Register[2])
}

func TestRunnerInputExhausted(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"INPUT R0",
		"INPUT R1",
		"HALT",
	}, "\n")

	asm := &vm.Assembler{}
	prog, err := asm.AssembleString(source)
	assert.NoError(err)

	run := New(prog)
	run.Input = strings.NewReader("3")

	result, err := run.Run()
	assert.NotNil(result)
	assert.Equal(vm.STATE_FAULTED, result.Status)
	assert.ErrorIs(err, &vm.Fault{Kind: vm.FAULT_INPUT_EXHAUSTED})

	// The error carries the faulting source line.
	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(2, re.LineNo)
	}
}

func TestRunnerStepBudget(t *testing.T) {
	assert := assert.New(t)

	asm := &vm.Assembler{}
	prog, err := asm.AssembleString("loop:\nJMP loop")
	assert.NoError(err)

	run := New(prog)
	run.StepLimit = 5

	result, err := run.Run()
	assert.ErrorIs(err, &vm.Fault{Kind: vm.FAULT_STEP_LIMIT_EXCEEDED})
	assert.Equal(5, result.State.Steps)
}

func TestRunnerDefaultStepBudget(t *testing.T) {
	assert := assert.New(t)

	asm := &vm.Assembler{}
	prog, err := asm.AssembleString("loop:\nJMP loop")
	assert.NoError(err)

	// A zero budget falls back to the default rather than running forever.
	run := New(prog)
	run.StepLimit = 0

	result, err := run.Run()
	assert.ErrorIs(err, &vm.Fault{Kind: vm.FAULT_STEP_LIMIT_EXCEEDED})
	assert.Equal(DEFAULT_STEP_LIMIT, result.State.Steps)
}

func TestScanInput(t *testing.T) {
	assert := assert.New(t)

	next := ScanInput(strings.NewReader(" 3\t-4\n0x10 "))

	value, ok := next()
	assert.True(ok)
	assert.Equal(int32(3), value)

	value, ok = next()
	assert.True(ok)
	assert.Equal(int32(-4), value)

	value, ok = next()
	assert.True(ok)
	assert.Equal(int32(0x10), value)

	_, ok = next()
	assert.False(ok)

	// A malformed word ends the stream.
	next = ScanInput(strings.NewReader("1 x 2"))
	_, ok = next()
	assert.True(ok)
	_, ok = next()
	assert.False(ok)
}

func TestDumpMemory(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"MOV R0, 42",
		"STORE R0, 1",
		"MOV R0, -7",
		"STORE R0, 2",
		"HALT",
	}, "\n")

	result, err := RunSource(source)
	assert.NoError(err)

	buf := &bytes.Buffer{}
	err = DumpMemory(buf, result.State, 0, 2)
	assert.NoError(err)
	assert.Equal("address,value\n0,0\n1,42\n2,-7\n", buf.String())
}

func TestDumpMemoryRange(t *testing.T) {
	assert := assert.New(t)

	result, err := RunSource("HALT")
	assert.NoError(err)

	buf := &bytes.Buffer{}
	assert.ErrorIs(DumpMemory(buf, result.State, -1, 0), ErrDumpRange)
	assert.ErrorIs(DumpMemory(buf, result.State, 0, vm.MEMORY_SIZE), ErrDumpRange)
	assert.ErrorIs(DumpMemory(buf, result.State, 5, 4), ErrDumpRange)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defines := map[string]string{}
	for key, value := range Defines() {
		defines[key] = value
	}

	assert.Equal("1000000", defines["DEFAULT_STEP_LIMIT"])
	assert.Equal("8", defines["REGISTER_COUNT"])
	assert.Equal("256", defines["MEMORY_SIZE"])
}
