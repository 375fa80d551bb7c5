package bytecode

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
)

// Runtime error causes. RuntimeError wraps exactly one of these.
var (
	ErrUndefinedGlobal = errors.New("undefined global")
	ErrNotCallable     = errors.New("attempt to call a non-function value")
	ErrBadConstant     = errors.New("invalid constant reference")
	ErrBadInstruction  = errors.New("invalid instruction")
	ErrNativeFailed    = errors.New("native function failed")
)

// RuntimeError is a fatal error raised while executing a chunk.
type RuntimeError struct {
	PC     int            // index of the failing instruction
	Op     Opcode         // its opcode
	Loc    SourceLocation // where it was compiled from, if known
	Detail string         // quoted after the cause, e.g. the global name
	Err    error          // wraps one of the Err* causes
}

func (e *RuntimeError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s '%s'", msg, e.Detail)
	}
	if e.Loc.Line > 0 {
		return fmt.Sprintf("runtime error at %d:%d (pc %d, %s): %s", e.Loc.Line, e.Loc.Column, e.PC, e.Op, msg)
	}
	return fmt.Sprintf("runtime error (pc %d, %s): %s", e.PC, e.Op, msg)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Globals maps global names to values. The host fills it before execution
// and the VM only reads it.
type Globals map[string]Value

// DefaultStackSize is the initial number of stack slots.
const DefaultStackSize = 16

// VM executes bytecode chunks.
type VM struct {
	globals Globals
	stack   []Value // value stack, slot 0 is the base
	log     commonlog.Logger

	// Current execution state
	chunk *Chunk
	pc    int

	// StackSize is the initial stack capacity. The stack grows on demand.
	StackSize int

	// Trace logs each instruction at debug level.
	Trace bool
}

// NewVM creates a VM bound to the given global table.
func NewVM(globals Globals) *VM {
	if globals == nil {
		globals = Globals{}
	}
	return &VM{
		globals:   globals,
		log:       commonlog.GetLogger("moonlet.vm"),
		StackSize: DefaultStackSize,
	}
}

// Run executes chunk against globals on a fresh VM.
func Run(chunk *Chunk, globals Globals) error {
	return NewVM(globals).Execute(chunk)
}

// Execute runs the chunk from its first instruction to its last.
func (vm *VM) Execute(chunk *Chunk) error {
	vm.chunk = chunk
	vm.pc = 0
	size := vm.StackSize
	if size <= 0 {
		size = DefaultStackSize
	}
	vm.stack = make([]Value, size)

	for vm.pc = 0; vm.pc < len(chunk.Code); vm.pc++ {
		ins := chunk.Code[vm.pc]
		if vm.Trace {
			vm.log.Debugf("%04d  %-24s", vm.pc, ins)
		}
		if err := vm.step(ins); err != nil {
			return err
		}
	}
	return nil
}

// step executes a single instruction.
func (vm *VM) step(ins Instruction) error {
	switch op := ins.Op(); op {
	case OpGetGlobal:
		key, ok := vm.chunk.Constant(int(ins.B()))
		if !ok || key.Kind() != KindString {
			return vm.fail(op, "", ErrBadConstant)
		}
		v, ok := vm.globals[key.AsString()]
		if !ok {
			return vm.fail(op, key.AsString(), ErrUndefinedGlobal)
		}
		vm.set(ins.A(), v)

	case OpLoadNil:
		vm.set(ins.A(), Nil())

	case OpLoadBool:
		vm.set(ins.A(), Bool(ins.B() != 0))

	case OpLoadInt:
		vm.set(ins.A(), Int(int64(ins.SB())))

	case OpLoadConst:
		v, ok := vm.chunk.Constant(int(ins.B()))
		if !ok {
			return vm.fail(op, "", ErrBadConstant)
		}
		vm.set(ins.A(), v)

	case OpCall:
		return vm.call(ins.A(), int(ins.B()))

	default:
		return vm.fail(op, fmt.Sprintf("0x%02X", byte(op)), ErrBadInstruction)
	}
	return nil
}

func (vm *VM) call(slot uint8, argc int) error {
	fnSlot := int(slot)
	vm.grow(fnSlot + argc + 1)

	callee := vm.stack[fnSlot]
	fn := callee.AsNative()
	if fn == nil || fn.Fn == nil {
		return vm.fail(OpCall, "", fmt.Errorf("%w (%s)", ErrNotCallable, callee.Kind()))
	}

	args := make([]Value, argc)
	copy(args, vm.stack[fnSlot+1:fnSlot+1+argc])
	if err := fn.Fn(args); err != nil {
		return vm.fail(OpCall, "", fmt.Errorf("%w '%s': %w", ErrNativeFailed, fn.Name, err))
	}
	return nil
}

// set stores v in slot, growing the stack if needed.
func (vm *VM) set(slot uint8, v Value) {
	vm.grow(int(slot) + 1)
	vm.stack[slot] = v
}

func (vm *VM) grow(n int) {
	if n <= len(vm.stack) {
		return
	}
	size := 2 * len(vm.stack)
	if size < n {
		size = n
	}
	stack := make([]Value, size)
	copy(stack, vm.stack)
	vm.stack = stack
}

func (vm *VM) fail(op Opcode, detail string, err error) error {
	rerr := &RuntimeError{
		PC:     vm.pc,
		Op:     op,
		Loc:    vm.chunk.Location(vm.pc),
		Detail: detail,
		Err:    err,
	}
	vm.log.Debugf("%s", rerr)
	return rerr
}

// Slot returns the value in a stack slot after execution, for inspection.
func (vm *VM) Slot(i int) Value {
	if i < 0 || i >= len(vm.stack) {
		return Nil()
	}
	return vm.stack[i]
}
