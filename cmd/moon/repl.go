package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chazu/moonlet/compiler"
	"github.com/chazu/moonlet/pkg/runtime"
)

// runREPL reads statements line by line and runs each against host.
// Errors are reported and the session continues.
func runREPL(host *runtime.Host, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "moonlet REPL (type 'exit' to quit, ':help' for commands)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ">> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return
		case strings.HasPrefix(line, ":"):
			handleREPLCommand(host, out, line)
		default:
			if err := host.RunSource(line); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
	}
}

func handleREPLCommand(host *runtime.Host, out io.Writer, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :tokens <src>  Show the tokens of src")
		fmt.Fprintln(out, "  :list <src>    Show the compiled chunk for src")
		fmt.Fprintln(out, "  :globals       List global names")
		fmt.Fprintln(out, "  exit           Leave the REPL")

	case ":tokens":
		if err := printTokens(out, arg); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}

	case ":list":
		chunk, err := compiler.Compile(arg)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprint(out, chunk.Disassemble())

	case ":globals":
		names := make([]string, 0, len(host.Globals()))
		for name := range host.Globals() {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-12s %s\n", name, host.Globals()[name].Kind())
		}

	default:
		fmt.Fprintf(out, "Unknown command %s (try :help)\n", cmd)
	}
}
