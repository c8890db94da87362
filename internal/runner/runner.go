package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"loki/internal/config"
	"loki/pkg/assembler"
	"loki/pkg/color"
	"loki/pkg/image"
	"loki/pkg/interpreter"
)

// ImageExt marks input files that hold a CBOR image instead of assembly.
const ImageExt = ".lki"

type Runner struct {
	Help        bool   // Show help message
	Verbose     bool   // Enable verbose output
	NoColor     bool   // Disable colored output
	Disassemble bool   // Print the listing before running
	Profile     bool   // Print hot instructions after running
	Trace       bool   // Log every dispatched instruction
	ConfigFile  string // Path to loki.yaml, empty to look in the working directory
	StackSize   int    // Value stack capacity
	MaxSteps    int    // Instruction budget, 0 for no limit
	SourceFile  string // Path to the .lasm or .lki input
	OutputFile  string // Write an image here instead of running

	Stdout io.Writer
	Logger *log.Logger
}

// Apply merges cfg into the runner. Settings named in explicit (by their
// config key) were given on the command line and win even when zero; the rest
// come from cfg. The merged settings are validated.
func (r *Runner) Apply(cfg config.Config, explicit ...string) error {
	for _, key := range explicit {
		switch key {
		case "stack_size":
			cfg.StackSize = r.StackSize
		case "max_steps":
			cfg.MaxSteps = r.MaxSteps
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.StackSize = cfg.StackSize
	r.MaxSteps = cfg.MaxSteps
	r.Trace = r.Trace || cfg.Trace
	r.Profile = r.Profile || cfg.Profile
	r.NoColor = r.NoColor || cfg.NoColor
	return nil
}

// Run loads the input and either writes it out as an image or executes it.
func (r *Runner) Run() error {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}

	r.Logger.Info("Processing file", "file", r.SourceFile)

	entry, err := r.load()
	if err != nil {
		return err
	}

	if r.Disassemble {
		fmt.Fprintln(r.Stdout, color.GreenText("=== Disassembly ==="))
		fmt.Fprint(r.Stdout, color.Listing(interpreter.Disassemble(entry)))
	}

	if r.OutputFile != "" {
		if err := image.WriteFile(r.OutputFile, entry); err != nil {
			return fmt.Errorf("writing image failed: %w", err)
		}
		r.Logger.Info("Wrote image", "file", r.OutputFile)
		return nil
	}

	return r.execute(entry)
}

func (r *Runner) load() (interpreter.Code, error) {
	if strings.EqualFold(filepath.Ext(r.SourceFile), ImageExt) {
		img, err := image.ReadFile(r.SourceFile)
		if err != nil {
			return nil, fmt.Errorf("loading image failed: %w", err)
		}
		return img.Entry, nil
	}

	input, err := os.ReadFile(r.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s failed: %w", r.SourceFile, err)
	}

	a := assembler.NewAssembler(string(input))
	prog, err := a.Assemble()
	if err != nil {
		errs := a.Errors()
		fmt.Fprintln(r.Stdout, color.BrightRedText("=== Assembly Errors ==="))
		for _, e := range errs {
			fmt.Fprintln(r.Stdout, e)
		}
		return nil, fmt.Errorf("assembly failed with %d errors", len(errs))
	}

	r.Logger.Debug("Assembled", "entry", prog.Entry, "functions", len(prog.Functions), "vars", len(prog.Vars))
	return prog.Entry, nil
}

func (r *Runner) execute(entry interpreter.Code) error {
	opts := []interpreter.Option{
		interpreter.WithLogger(r.Logger),
		interpreter.WithTrace(r.Trace),
		interpreter.WithMaxSteps(r.MaxSteps),
	}
	if r.StackSize > 0 {
		opts = append(opts, interpreter.WithStackSize(r.StackSize))
	}

	var prof *interpreter.Profiler
	if r.Profile {
		prof = interpreter.NewProfiler()
		opts = append(opts, interpreter.WithTracer(prof))
	}

	it := interpreter.NewInterpreter(entry, opts...)
	result, err := it.Run()

	if prof != nil {
		r.printProfile(prof, it.Steps())
	}
	if err != nil {
		fmt.Fprintln(r.Stdout, color.Error(err.Error()))
		return fmt.Errorf("execution failed: %w", err)
	}

	r.Logger.Debug("Halted", "steps", it.Steps())
	fmt.Fprintln(r.Stdout, result)
	return nil
}

func (r *Runner) printProfile(p *interpreter.Profiler, steps int) {
	fmt.Fprintln(r.Stdout, color.GreenText("=== Profile ==="))
	fmt.Fprintf(r.Stdout, "steps %d, stack high water %d\n", steps, p.HighWater())
	for _, h := range p.Hot(10) {
		fmt.Fprintf(r.Stdout, "%s %s %s %d\n",
			color.CyanText(fmt.Sprintf("%04d", h.IP)),
			color.GrayText(h.Code.String()),
			color.YellowText(fmt.Sprintf("%-12s", h.Op)),
			h.Count)
	}
}
