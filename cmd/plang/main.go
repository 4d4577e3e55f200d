// Command plang is the CLI front end of §6.6: it runs a pattern source
// file against a binary data file and prints the resulting pattern
// forest.
//
// Grounded on the teacher's cmd/funxy/main.go argument handling and
// stdin/file dispatch shape, generalized from funxy's module/import
// pipeline onto this repository's internal/runtime façade; coloring and
// size-formatting are new (funxy's CLI prints plain text), grounded
// instead on the sibling funvibe-funxy repo's builtins_term.go NO_COLOR/
// isatty convention and on go-humanize for byte sizes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/persist"
	"github.com/werwolv/patternlang/internal/runtime"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: plang <pattern-file> <data-file> [sqlite-export-path]")
		return 2
	}
	patternPath, dataPath := args[0], args[1]

	data, err := os.ReadFile(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plang: reading %s: %v\n", dataPath, err)
		return 1
	}

	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(data)), byteReaderAt(data), nil)
	rt.SetDangerPermission(config.DangerAllow, nil)

	ok := rt.ExecuteFile(patternPath, nil, nil)

	for _, entry := range rt.GetConsoleLog() {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", entry.Level, entry.Message)
	}

	if !ok {
		if e := rt.GetError(); e != nil {
			fmt.Fprintf(os.Stderr, "plang: %s\n", e.Error())
		}
		return 1
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		useColor = false
	}

	w := &printer{color: useColor}
	for _, p := range rt.GetPatterns() {
		w.printPattern(p, 0)
	}

	for name, v := range rt.GetOutVariables() {
		fmt.Printf("%s = %s\n", name, v.ToStringValue(false))
	}

	if len(args) > 2 {
		if err := persist.ExportSQLite(rt.GetPatterns(), args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "plang: exporting to %s: %v\n", args[2], err)
			return 1
		}
	}

	return 0
}

type byteReaderAt []byte

func (b byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// printer renders the pattern forest as indented text (§6.6), optionally
// ANSI-colored per each pattern's assigned Color() the way a palette-
// aware pattern viewer would.
type printer struct {
	color bool
}

func (w *printer) printPattern(p pattern.Pattern, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	line := fmt.Sprintf("%s%s %s = %s [%s, %s]",
		indent, p.TypeName(), p.DisplayName(), p.FormattedValue(),
		humanize.Bytes(p.Size()), humanize.Comma(int64(p.Offset())))

	if w.color {
		line = colorize(line, p.Color())
	}
	fmt.Println(line)

	for _, child := range children(p) {
		w.printPattern(child, depth+1)
	}
}

func children(p pattern.Pattern) []pattern.Pattern {
	switch v := p.(type) {
	case *pattern.Struct:
		return v.Members()
	case *pattern.Union:
		return v.Members()
	case *pattern.Bitfield:
		return v.Fields()
	case pattern.Iteratable:
		return v.Entries()
	default:
		return nil
	}
}

// colorize wraps line in a 24-bit ANSI truecolor escape derived from a
// pattern's assigned display color (§3.1's DisplayName/Color pair), the
// way the sibling funvibe-funxy term builtins degrade gracefully: a zero
// color leaves the line unstyled rather than printing black text.
func colorize(line string, color uint32) string {
	if color == 0 {
		return line
	}
	r, g, b := byte(color>>16), byte(color>>8), byte(color)
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, line)
}
