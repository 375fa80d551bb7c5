// Package bytecode provides the value model, instruction encoding and
// register virtual machine for moonlet programs.
//
// # Values
//
// A Value is one of nil, boolean, integer, float, string or a host-provided
// native function. Values are immutable and comparable: Equal (and ==) holds
// only for the same variant with an identical payload, so Int(1) and
// Float(1) are distinct. RawEqual is the numeric-aware run-time equality and
// is kept separate on purpose.
//
// # Instructions
//
// Every instruction is one 32-bit word:
//
//	 31            16 15      8 7       0
//	+----------------+---------+---------+
//	|       B        |    A    | opcode  |
//	+----------------+---------+---------+
//
// A addresses a stack slot. B is a constant index (0-255), a boolean, an
// argument count or a signed 16-bit immediate, depending on the opcode.
// Integers that do not fit the immediate go through the constant table.
//
// # Chunks
//
// A Chunk pairs the instruction sequence with its constant table. The
// constant table never holds two Equal values: AddConstant returns the
// existing index through a hash index kept alongside the ordered slice.
//
// # Execution
//
// The VM scans the code linearly. There are no jumps, frames or return
// values yet: OpCall invokes a Native with the argument slots that follow
// the callee. Results are not collected.
// Any failure stops execution and is reported as a *RuntimeError.
package bytecode
