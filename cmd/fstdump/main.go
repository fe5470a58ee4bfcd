package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/reader"
	"github.com/wippyai/fst-reader/signal"
)

func main() {
	var (
		fstFile     = flag.String("fst", "", "Path to waveform file")
		hier        = flag.Bool("hier", false, "Print the design hierarchy and exit")
		sigPath     = flag.String("signal", "", "Dotted path of a signal to query (top.cpu.clk)")
		at          = flag.Uint64("at", 0, "Query time for -signal")
		dump        = flag.Bool("dump", false, "Replay every value change")
		binary      = flag.Bool("binary", false, "Emit raw value payloads instead of display form")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *fstFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: fstdump -fst <file.fst>              (show metadata)")
		fmt.Fprintln(os.Stderr, "       fstdump -fst <file.fst> -hier")
		fmt.Fprintln(os.Stderr, "       fstdump -fst <file.fst> -signal top.cpu.clk -at 1000")
		fmt.Fprintln(os.Stderr, "       fstdump -fst <file.fst> -dump")
		fmt.Fprintln(os.Stderr, "       fstdump -fst <file.fst> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			reader.SetLogger(log)
			defer log.Sync()
		}
	}

	if *interactive {
		if err := runInteractive(*fstFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	mode := fstreader.OutputString
	if *binary {
		mode = fstreader.OutputBinary
	}

	if err := run(*fstFile, *sigPath, *at, mode, *hier, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(fstFile, sigPath string, at uint64, mode fstreader.OutputMode, hier, dump bool) error {
	s, err := reader.Open(fstFile, &reader.Options{Mode: mode})
	if err != nil {
		return err
	}
	defer s.Close()

	hdr, err := s.Header()
	if err != nil {
		return err
	}
	ts, err := s.Timescale()
	if err != nil {
		return err
	}
	blocks, err := s.BlockCount()
	if err != nil {
		return err
	}
	mismatches, err := s.Mismatches()
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", fstFile)
	fmt.Printf("Version: %s\n", hdr.Version)
	fmt.Printf("Date: %s\n", hdr.Date)
	fmt.Printf("Time range: [%d, %d] %s\n", hdr.StartTime, hdr.EndTime, ts)
	fmt.Printf("Scopes: %d  Vars: %d  Blocks: %d\n", hdr.ScopeCount, hdr.VarCount, blocks)
	for _, m := range mismatches {
		fmt.Printf("Warning: %s\n", m)
	}

	switch {
	case hier:
		return printHierarchy(s)
	case sigPath != "":
		return printValue(s, sigPath, at)
	case dump:
		return dumpChanges(s)
	}
	return nil
}

func printHierarchy(s *reader.Session) error {
	width := 120
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	fmt.Printf("\nHierarchy:\n")
	h, err := s.Hierarchy()
	if err != nil {
		return err
	}
	h.Rewind()
	depth := 0
	for {
		n, ok := h.Next()
		if !ok {
			return nil
		}
		switch n.Type {
		case format.NodeScope:
			printLine(width, depth, fmt.Sprintf("%s %s", n.Scope.Type, n.Scope.Name))
			depth++
		case format.NodeUpscope:
			depth--
		case format.NodeVar:
			v := n.Var
			rng := ""
			if v.Index != nil {
				rng = fmt.Sprintf(" [%d:%d]", v.Index.MSB, v.Index.LSB)
			}
			printLine(width, depth, fmt.Sprintf("%s %s%s (%d bits, handle %d)",
				v.Type, v.Name, rng, v.Bits, v.Handle))
		case format.NodeAttrBegin:
			printLine(width, depth, fmt.Sprintf("attr %s = %d", n.Attr.Name, n.Attr.Arg))
		}
	}
}

func printLine(width, depth int, text string) {
	line := strings.Repeat("  ", depth) + text
	if len(line) > width {
		line = line[:width-1] + "…"
	}
	fmt.Println(line)
}

func printValue(s *reader.Session, path string, at uint64) error {
	v, err := s.VarByPath(path)
	if err != nil {
		return err
	}
	val, err := s.ValueAtString(v.Handle, at)
	if err != nil {
		return err
	}
	ts, err := s.Timescale()
	if err != nil {
		return err
	}
	fmt.Printf("\n%s @ %d%s = %s\n", path, at, ts, val)
	return nil
}

func dumpChanges(s *reader.Session) error {
	names, err := handleNames(s)
	if err != nil {
		return err
	}
	fmt.Printf("\nChanges:\n")
	mode := s.Mode()
	return s.IterBlocks(func(t uint64, h fstreader.Handle, v signal.Value) bool {
		fmt.Printf("%12d  %-30s %s\n", t, names[h], v.Format(mode))
		return true
	})
}

// handleNames inverts the hierarchy into handle -> short name, keeping
// the primary declaration for aliased handles.
func handleNames(s *reader.Session) (map[fstreader.Handle]string, error) {
	names := make(map[fstreader.Handle]string)
	h, err := s.Hierarchy()
	if err != nil {
		return nil, err
	}
	h.Rewind()
	for {
		n, ok := h.Next()
		if !ok {
			return names, nil
		}
		if n.Type == format.NodeVar {
			if _, seen := names[n.Var.Handle]; !seen {
				names[n.Var.Handle] = n.Var.Name
			}
		}
	}
}
