// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"

	"github.com/ezrec/duet/cpu"
	"github.com/ezrec/duet/scheduler"
)

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]int64

func (d defines) String() string {
	var parts []string
	for _, name := range slices.Sorted(maps.Keys(d)) {
		parts = append(parts, fmt.Sprintf("%v=%v", name, d[name]))
	}
	return strings.Join(parts, ",")
}

func (d defines) Set(arg string) (err error) {
	name, text, ok := strings.Cut(arg, "=")
	if !ok || len(name) == 0 {
		err = fmt.Errorf("%v: expected NAME=VALUE", arg)
		return
	}

	value, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return
	}

	d[name] = value
	return
}

// newReport returns the run report logger. Records always go to stderr,
// and also to a JSON file when one is named.
func newReport(verbose bool, output io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	if output != nil {
		handlers = append(handlers, slog.NewJSONHandler(output, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func load(input string, asm *cpu.Assembler) (prog *cpu.Program, err error) {
	var inf io.Reader
	if input == "-" {
		inf = os.Stdin
	} else {
		var file *os.File
		file, err = os.Open(input)
		if err != nil {
			return
		}
		defer file.Close()
		inf = file
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = errors.Wrap(err, input)
	}

	return
}

func main() {
	var mode string
	var limit int
	var timeout time.Duration
	var verbose bool
	var report string
	predefine := defines{}

	flag.StringVar(&mode, "m", "single", "Mode: single, dual, or concurrent")
	flag.IntVar(&limit, "l", 0, "Step limit per unit, 0 for none")
	flag.DurationVar(&timeout, "t", 0, "Run timeout, 0 for none")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&report, "r", "", "JSON run report file")
	flag.Var(predefine, "D", "Predefine NAME=VALUE for $() expressions")

	flag.Parse()

	input := "-"
	switch flag.NArg() {
	case 0:
	case 1:
		input = flag.Arg(0)
	default:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	var reportFile io.Writer
	if len(report) != 0 {
		ouf, err := os.Create(report)
		if err != nil {
			log.Fatalf("%v: %v", report, err)
		}
		defer ouf.Close()
		reportFile = ouf
	}
	logger := newReport(verbose, reportFile)

	asm := &cpu.Assembler{Verbose: verbose}
	for name, value := range predefine {
		asm.Predefine(name, value)
	}

	prog, err := load(input, asm)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	switch mode {
	case "single":
		solo := scheduler.NewSolo(prog)
		solo.Verbose = verbose
		solo.StepLimit = limit
		solo.Reset()

		result, err := solo.Run(ctx)
		if err != nil {
			logger.Error("run failed", "mode", mode, "ticks", solo.Cpu.Ticks, "error", err)
			log.Fatal(err)
		}

		logger.Info("run complete",
			"mode", mode,
			"reason", result.Reason.String(),
			"value", result.Value,
			"ticks", solo.Cpu.Ticks,
			"elapsed", time.Since(start),
		)
		fmt.Println(result)
	case "dual":
		duet := scheduler.NewDuet(prog)
		duet.Verbose = verbose
		duet.StepLimit = limit
		duet.Reset()

		sent, err := duet.Run(ctx)
		if err != nil {
			logger.Error("run failed", "mode", mode, "sweeps", duet.Sweeps, "error", err)
			log.Fatal(err)
		}

		logger.Info("run complete",
			"mode", mode,
			"sent", sent,
			"sweeps", duet.Sweeps,
			"deadlocked", duet.Deadlocked(),
			"a", duet.Units[0].Status.String(),
			"b", duet.Units[1].Status.String(),
			"elapsed", time.Since(start),
		)
		fmt.Println(sent)
	case "concurrent":
		con := scheduler.NewConcurrent(prog)
		con.Verbose = verbose
		con.StepLimit = limit
		con.Reset()

		sent, err := con.Run(ctx)
		if err != nil {
			logger.Error("run failed", "mode", mode, "error", err)
			log.Fatal(err)
		}

		logger.Info("run complete",
			"mode", mode,
			"sent", sent,
			"deadlocked", con.Deadlocked(),
			"ticks_a", con.Units[0].Ticks,
			"ticks_b", con.Units[1].Ticks,
			"elapsed", time.Since(start),
		)
		fmt.Println(sent)
	default:
		log.Fatalf("%v: Unknown mode: %v", os.Args[0], mode)
	}
}
