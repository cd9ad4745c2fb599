package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/minivm/minivm/runner"
	"github.com/minivm/minivm/vm"
)

// parseRange parses a memory dump range of the form "start-end".
func parseRange(s string) (from, to int, err error) {
	a, b, found := strings.Cut(s, "-")
	if !found {
		err = runner.ErrDumpRange
		return
	}
	from, err = strconv.Atoi(a)
	if err != nil {
		return
	}
	to, err = strconv.Atoi(b)
	return
}

func main() {
	var compile string
	var load string
	var save string
	var input string
	var output string
	var dump string
	var dumpRange string
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", "assembly source file to compile")
	flag.StringVar(&load, "b", "", "program binary to load instead of compiling")
	flag.StringVar(&save, "s", "", "save program binary here, do not execute")
	flag.StringVar(&input, "i", "-", "INPUT value stream")
	flag.StringVar(&output, "o", "-", "PRINT output")
	flag.StringVar(&dump, "dump", "", "write a CSV memory dump here after the run")
	flag.StringVar(&dumpRange, "range", "0-15", "memory dump range (start-end)")
	flag.IntVar(&limit, "limit", runner.DEFAULT_STEP_LIMIT, "step budget")
	flag.BoolVar(&verbose, "v", false, "verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: unknown arguments: %v", os.Args[0], flag.Args())
	}

	prog := &vm.Program{}

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &vm.Assembler{Verbose: verbose}
		prog, err = asm.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(load) != 0:
		data, err := os.ReadFile(load)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
		err = prog.UnmarshalBinary(data)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
	default:
		log.Fatalf("%v: nothing to do: need -c or -b", os.Args[0])
	}

	if len(save) != 0 {
		data, err := prog.MarshalBinary()
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		if err = os.WriteFile(save, data, 0o644); err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	run := runner.New(prog)
	run.Verbose = verbose
	run.StepLimit = limit

	if input == "-" {
		run.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		run.Input = inf
	}

	if output == "-" {
		run.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		run.Output = ouf
	}

	result, err := run.Run()
	if err != nil {
		log.Fatal(err)
	}

	if len(dump) != 0 {
		from, to, err := parseRange(dumpRange)
		if err != nil {
			log.Fatalf("%v: %v", dumpRange, err)
		}
		ouf, err := os.Create(dump)
		if err != nil {
			log.Fatalf("%v: %v", dump, err)
		}
		defer ouf.Close()
		if err = runner.DumpMemory(ouf, result.State, from, to); err != nil {
			log.Fatalf("%v: %v", dump, err)
		}
	}
}
