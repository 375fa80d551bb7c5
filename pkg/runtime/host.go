// Package runtime is the host environment that embeds the moonlet VM: it
// builds the global table, provides the native library and runs source text.
package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/moonlet/compiler"
	"github.com/chazu/moonlet/pkg/bytecode"
)

// Config holds host configuration.
type Config struct {
	Out       io.Writer // print output, defaults to os.Stdout
	StackSize int       // initial VM stack slots, 0 for the default
	Trace     bool      // log every executed instruction
}

// DefaultConfig returns a configuration printing to standard output.
func DefaultConfig() *Config {
	return &Config{Out: os.Stdout, StackSize: bytecode.DefaultStackSize}
}

// Host owns the global table and runs chunks against it.
type Host struct {
	config  Config
	globals bytecode.Globals
	log     commonlog.Logger
}

// NewHost creates a host with the standard library bound.
func NewHost(config *Config) *Host {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	h := &Host{
		config:  cfg,
		globals: bytecode.Globals{},
		log:     commonlog.GetLogger("moonlet.runtime"),
	}
	h.Register("print", Print(cfg.Out))
	return h
}

// Register binds a native function as a global.
func (h *Host) Register(name string, fn func(args []bytecode.Value) error) {
	h.globals[name] = bytecode.NativeValue(&bytecode.Native{Name: name, Fn: fn})
}

// Globals returns the host's global table.
func (h *Host) Globals() bytecode.Globals {
	return h.globals
}

// Execute runs a compiled chunk.
func (h *Host) Execute(chunk *bytecode.Chunk) error {
	vm := bytecode.NewVM(h.globals)
	if h.config.StackSize > 0 {
		vm.StackSize = h.config.StackSize
	}
	vm.Trace = h.config.Trace
	return vm.Execute(chunk)
}

// RunSource compiles and runs source text. Nothing runs if compilation fails.
func (h *Host) RunSource(source string) error {
	chunk, err := compiler.Compile(source)
	if err != nil {
		return err
	}
	h.log.Debugf("running chunk: %d instructions, %d constants", chunk.CodeLen(), chunk.ConstantCount())
	return h.Execute(chunk)
}

// RunFile reads and runs a source file.
func (h *Host) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := h.RunSource(string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
