// Moonlet CLI - the main entry point for running moonlet scripts
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/moonlet/compiler"
	"github.com/chazu/moonlet/manifest"
	"github.com/chazu/moonlet/pkg/runtime"
	"github.com/chazu/moonlet/server"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	tokens      bool
	list        bool
	trace       bool
	verbose     bool
	interactive bool
	lsp         bool
	config      string
	initName    string
	script      string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("moon", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.BoolVar(&o.tokens, "tokens", false, "Print the token stream and exit")
	fs.BoolVar(&o.list, "list", false, "Print the compiled chunk and exit")
	fs.BoolVar(&o.trace, "trace", false, "Log every executed instruction")
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	fs.BoolVar(&o.interactive, "i", false, "Start interactive REPL")
	fs.BoolVar(&o.lsp, "lsp", false, "Start language server on stdio")
	fs.StringVar(&o.config, "config", "", "Path to moonlet.toml (default: search upward from the script)")
	fs.StringVar(&o.initName, "init", "", "Create moonlet.toml for a new project with the given name")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: moon [options] [script.lua]\n\n")
		fmt.Fprintf(stderr, "Compiles and runs a moonlet script. Without a script, runs the\n")
		fmt.Fprintf(stderr, "entry from moonlet.toml or starts the REPL.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  moon hello.lua          # Run a script\n")
		fmt.Fprintf(stderr, "  moon -list hello.lua    # Show constants and bytecode\n")
		fmt.Fprintf(stderr, "  moon -i                 # Start REPL\n")
		fmt.Fprintf(stderr, "  moon -init demo         # Create moonlet.toml\n")
		fmt.Fprintf(stderr, "  moon -lsp               # Serve LSP on stdio\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		o.script = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one script, got %d", fs.NArg())
	}
	return &o, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	} else if err != nil {
		fmt.Fprintf(stderr, "moon: %v\n", err)
		return 2
	}

	if opts.initName != "" {
		if err := manifest.Default(opts.initName).Write("."); err != nil {
			fmt.Fprintf(stderr, "moon: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Created %s\n", manifest.FileName)
		return 0
	}

	m, err := loadManifest(opts)
	if err != nil {
		fmt.Fprintf(stderr, "moon: %v\n", err)
		return 1
	}
	configureLogging(opts, m)
	log := commonlog.GetLogger("moonlet.cli")

	host := runtime.NewHost(hostConfig(opts, m, stdout))

	if opts.lsp {
		if err := server.NewLSP(host).Run(); err != nil {
			fmt.Fprintf(stderr, "moon: lsp: %v\n", err)
			return 1
		}
		return 0
	}

	script := opts.script
	if script == "" && m != nil {
		script = m.EntryPath()
	}
	if script == "" && (opts.tokens || opts.list) {
		fmt.Fprintln(stderr, "moon: -tokens and -list need a script or a manifest entry")
		return 2
	}
	if script == "" || opts.interactive {
		if script != "" {
			if err := host.RunFile(script); err != nil {
				fmt.Fprintf(stderr, "moon: %v\n", err)
				return 1
			}
		}
		runREPL(host, stdin, stdout)
		return 0
	}

	log.Debugf("script: %s", script)
	if err := runScript(host, opts, script, stdout); err != nil {
		fmt.Fprintf(stderr, "moon: %v\n", err)
		return 1
	}
	return 0
}

// runScript lexes, lists or runs a script depending on the options.
func runScript(host *runtime.Host, opts *options, script string, stdout io.Writer) error {
	switch {
	case opts.tokens:
		data, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		return printTokens(stdout, string(data))

	case opts.list:
		data, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		chunk, err := compiler.Compile(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", script, err)
		}
		fmt.Fprint(stdout, chunk.DisassembleWithName(filepath.Base(script)))
		return nil

	default:
		return host.RunFile(script)
	}
}

// printTokens writes one line per token: position, type and text.
func printTokens(w io.Writer, source string) error {
	tokens, err := compiler.Tokenize(source)
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-8s %-10s %s\n", tok.Pos, tok.Type, tok)
	}
	return err
}

// loadManifest finds the project configuration: the -config path, or the
// first moonlet.toml above the script (or the working directory).
func loadManifest(opts *options) (*manifest.Manifest, error) {
	if opts.config != "" {
		dir := opts.config
		if filepath.Base(dir) == manifest.FileName {
			dir = filepath.Dir(dir)
		}
		return manifest.Load(dir)
	}

	start := "."
	if opts.script != "" {
		start = filepath.Dir(opts.script)
	}
	return manifest.FindAndLoad(start)
}

// configureLogging sets the log level and destination. Flags win over the
// manifest.
func configureLogging(opts *options, m *manifest.Manifest) {
	verbosity := 0
	var path *string
	if m != nil {
		verbosity = m.Log.Verbosity
		path = m.LogFilePath()
	}
	if opts.verbose || opts.trace {
		verbosity = max(verbosity, 2)
	}
	commonlog.Configure(verbosity, path)
}

func hostConfig(opts *options, m *manifest.Manifest, stdout io.Writer) *runtime.Config {
	cfg := runtime.DefaultConfig()
	cfg.Out = stdout
	if m != nil {
		if m.VM.StackSize > 0 {
			cfg.StackSize = m.VM.StackSize
		}
		cfg.Trace = m.VM.Trace
	}
	if opts.trace {
		cfg.Trace = true
	}
	return cfg
}
