package color

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"

	BrightRed = "\033[91m"
)

var colorEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		colorEnabled = false
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func EnableColor(enable bool) {
	colorEnabled = enable
}

func Colorize(color, text string) string {
	if !colorEnabled {
		return text
	}
	return color + text + Reset
}

func BrightRedText(text string) string {
	return Colorize(BrightRed, text)
}

func GreenText(text string) string {
	return Colorize(Green, text)
}

func YellowText(text string) string {
	return Colorize(Yellow, text)
}

func CyanText(text string) string {
	return Colorize(Cyan, text)
}

func GrayText(text string) string {
	return Colorize(Gray, text)
}

func BoldText(text string) string {
	return Colorize(Bold, text)
}

func Error(message string) string {
	if !colorEnabled {
		return message
	}
	return BrightRedText("Error: ") + message
}

// Listing colors a disassembly: headers bold, addresses gray, mnemonics
// yellow and trailing comments cyan.
func Listing(text string) string {
	if !colorEnabled {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "=="):
			lines[i] = BoldText(line)
		case len(line) > 5 && line[4] == ' ':
			lines[i] = listingLine(line)
		}
	}
	return strings.Join(lines, "\n")
}

func listingLine(line string) string {
	addr, rest := line[:4], line[5:]

	comment := ""
	for _, sep := range []string{" ; ", " -> "} {
		if idx := strings.Index(rest, sep); idx >= 0 {
			rest, comment = rest[:idx], rest[idx:]
			break
		}
	}

	mnemonic, operand, _ := strings.Cut(rest, " ")
	out := GrayText(addr) + " " + YellowText(mnemonic)
	if operand != "" {
		out += " " + operand
	}
	if comment != "" {
		out += CyanText(comment)
	}
	return out
}
