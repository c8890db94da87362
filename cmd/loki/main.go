package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"loki/internal/config"
	"loki/internal/logger"
	"loki/internal/runner"
	"loki/pkg/color"
)

// Main entry point for the Loki VM.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Disassemble, "d", false, "Print the disassembly before running")
	flag.BoolVar(&options.Profile, "p", false, "Print the hottest instructions after running")
	flag.BoolVar(&options.Trace, "t", false, "Log every dispatched instruction (implies -v)")
	flag.StringVar(&options.ConfigFile, "c", "", "Config file (default ./"+config.FileName+" if present)")
	flag.IntVar(&options.StackSize, "s", 0, "Value stack size in slots (default from config, else 1024)")
	flag.IntVar(&options.MaxSteps, "m", 0, "Maximum instructions to execute, 0 for no limit (default from config)")
	flag.StringVar(&options.OutputFile, "o", "", "Write a bytecode image instead of running")

	flag.Parse()
	args := flag.Args()

	if options.Help {
		fmt.Printf("Usage: %s [options] <file.lasm|file.lki>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	var explicit []string
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			explicit = append(explicit, "stack_size")
		case "m":
			explicit = append(explicit, "max_steps")
		}
	})

	cfg, err := loadConfig(options.ConfigFile)
	if err == nil {
		err = options.Apply(cfg, explicit...)
	}
	if err != nil {
		logger.Init(options.Verbose, options.NoColor)
		log.Fatal("Invalid configuration", "error", err)
	}

	logger.Init(options.Verbose || options.Trace, options.NoColor)
	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]

	if err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadDefault("")
	}
	return config.Load(path)
}
