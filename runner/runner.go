// Package runner wires a vm.Machine to the outside world: an input stream
// for INPUT, an output sink for PRINT, a step budget against runaway
// programs, and diagnostic helpers (memory dumps, line-number decoration).
package runner

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"

	"github.com/minivm/minivm/internal"
	"github.com/minivm/minivm/vm"
)

const (
	// DEFAULT_STEP_LIMIT bounds a run unless the caller chooses
	// otherwise. User programs can loop forever; the harness must not.
	DEFAULT_STEP_LIMIT = 1_000_000
)

var _runner_defines = map[string]string{
	"DEFAULT_STEP_LIMIT": fmt.Sprintf("%v", DEFAULT_STEP_LIMIT),
}

// Defines returns all configuration constants visible to front-ends.
func Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_runner_defines), vm.Defines())
}

// Runner executes one program per Run call, each on a fresh machine.
type Runner struct {
	Verbose bool        // If set, enables verbose logging.
	Program *vm.Program // Program to execute.

	Input     io.Reader // INPUT source: whitespace-separated integers. May be nil.
	Output    io.Writer // PRINT sink, one decimal value per line. May be nil.
	StepLimit int       // Step budget; 0 uses DEFAULT_STEP_LIMIT.

	Machine *vm.Machine // Machine of the most recent Run, for inspection.
}

// New creates a runner for a program with the default step budget.
func New(prog *vm.Program) (run *Runner) {
	run = &Runner{
		Program:   prog,
		StepLimit: DEFAULT_STEP_LIMIT,
	}

	return
}

// ScanInput adapts a reader of whitespace-separated integers into the
// machine's input callback. A malformed word ends the stream.
func ScanInput(input io.Reader) vm.InputFunc {
	scanner := bufio.NewScanner(input)
	scanner.Split(bufio.ScanWords)

	return func() (value int32, ok bool) {
		if !scanner.Scan() {
			return
		}
		v64, err := strconv.ParseInt(scanner.Text(), 0, 32)
		if err != nil {
			return
		}
		return int32(v64), true
	}
}

// Run executes the program to a terminal state. The result is always
// returned, even on fault; the error, when non-nil, is the fault decorated
// with the assembly source line.
func (run *Runner) Run() (result *vm.Result, err error) {
	mach := vm.NewMachine(run.Program)
	mach.Verbose = run.Verbose
	mach.StepLimit = run.StepLimit
	if mach.StepLimit == 0 {
		mach.StepLimit = DEFAULT_STEP_LIMIT
	}
	if run.Input != nil {
		mach.Input = ScanInput(run.Input)
	}
	run.Machine = mach

	result = mach.Run()

	if run.Output != nil {
		for _, value := range result.Output {
			_, werr := fmt.Fprintf(run.Output, "%d\n", value)
			if werr != nil {
				err = werr
				return
			}
		}
	}

	if result.Fault != nil {
		err = &ErrRuntime{LineNo: run.Program.LineNo(result.Fault.PC), Err: result.Fault}
	}

	return
}

// RunSource assembles and runs a source string in one call.
func RunSource(source string) (result *vm.Result, err error) {
	asm := &vm.Assembler{}
	prog, err := asm.AssembleString(source)
	if err != nil {
		return
	}

	return New(prog).Run()
}

// DumpMemory writes an address,value CSV of a memory range from a state
// snapshot.
func DumpMemory(w io.Writer, state vm.Snapshot, from, to int) (err error) {
	if from < 0 || to >= vm.MEMORY_SIZE || from > to {
		return ErrDumpRange
	}

	cw := csv.NewWriter(w)
	if err = cw.Write([]string{"address", "value"}); err != nil {
		return
	}
	for addr := from; addr <= to; addr++ {
		record := []string{
			strconv.Itoa(addr),
			strconv.FormatInt(int64(state.Memory[addr]), 10),
		}
		if err = cw.Write(record); err != nil {
			return
		}
	}
	cw.Flush()

	return cw.Error()
}
