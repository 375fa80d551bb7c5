package bytecode

import (
	"fmt"
	"math"
)

// Opcode represents a bytecode operation.
type Opcode byte

const (
	// ========================================================================
	// Globals (0x00-0x0F)
	// ========================================================================

	OpGetGlobal Opcode = 0x00 // R[A] = globals[K[B]]

	// ========================================================================
	// Loads (0x10-0x1F)
	// ========================================================================

	OpLoadNil   Opcode = 0x10 // R[A] = nil
	OpLoadBool  Opcode = 0x11 // R[A] = B != 0
	OpLoadInt   Opcode = 0x12 // R[A] = sB (signed 16-bit immediate)
	OpLoadConst Opcode = 0x13 // R[A] = K[B]

	// ========================================================================
	// Calls (0x20-0x2F)
	// ========================================================================

	OpCall Opcode = 0x20 // R[A](R[A+1], ..., R[A+B])
)

// OperandFormat describes how the B field of an instruction is read.
type OperandFormat uint8

const (
	FormatA      OperandFormat = iota // A only
	FormatABool                       // A, B as boolean
	FormatASInt                       // A, B as signed 16-bit immediate
	FormatAConst                      // A, B as constant index
	FormatACount                      // A, B as argument count
)

// OpcodeInfo provides metadata about each opcode for listings and validation.
type OpcodeInfo struct {
	Name   string
	Format OperandFormat
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpGetGlobal: {"GET_GLOBAL", FormatAConst},
	OpLoadNil:   {"LOAD_NIL", FormatA},
	OpLoadBool:  {"LOAD_BOOL", FormatABool},
	OpLoadInt:   {"LOAD_INT", FormatASInt},
	OpLoadConst: {"LOAD_CONST", FormatAConst},
	OpCall:      {"CALL", FormatACount},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo named "UNKNOWN(0x..)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsLoad returns true for the opcodes that materialize a literal.
func (op Opcode) IsLoad() bool {
	return op >= OpLoadNil && op <= OpLoadConst
}

// AllOpcodes returns all defined opcodes.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// Operand limits of the fixed-width encoding.
const (
	MaxRegister   = math.MaxUint8
	MaxConstIndex = math.MaxUint8
	MinImmediate  = math.MinInt16
	MaxImmediate  = math.MaxInt16
)

// Instruction is a fixed-width 32-bit instruction:
//
//	bits  0-7   opcode
//	bits  8-15  A  (register slot)
//	bits 16-31  B  (constant index, boolean, count, or signed immediate)
type Instruction uint32

func encode(op Opcode, a uint8, b uint16) Instruction {
	return Instruction(uint32(op) | uint32(a)<<8 | uint32(b)<<16)
}

// GetGlobal loads the global named by constant idx into slot dst.
func GetGlobal(dst, idx uint8) Instruction { return encode(OpGetGlobal, dst, uint16(idx)) }

// LoadNil stores nil into slot dst.
func LoadNil(dst uint8) Instruction { return encode(OpLoadNil, dst, 0) }

// LoadBool stores a boolean into slot dst.
func LoadBool(dst uint8, b bool) Instruction {
	if b {
		return encode(OpLoadBool, dst, 1)
	}
	return encode(OpLoadBool, dst, 0)
}

// LoadInt stores a small integer immediate into slot dst.
func LoadInt(dst uint8, n int16) Instruction { return encode(OpLoadInt, dst, uint16(n)) }

// LoadConst stores constant idx into slot dst.
func LoadConst(dst, idx uint8) Instruction { return encode(OpLoadConst, dst, uint16(idx)) }

// Call invokes the function in slot fn with argc arguments in the slots after it.
func Call(fn, argc uint8) Instruction { return encode(OpCall, fn, uint16(argc)) }

// Op returns the opcode.
func (i Instruction) Op() Opcode { return Opcode(i) }

// A returns the slot operand.
func (i Instruction) A() uint8 { return uint8(i >> 8) }

// B returns the unsigned second operand.
func (i Instruction) B() uint16 { return uint16(i >> 16) }

// SB returns the second operand as a signed immediate.
func (i Instruction) SB() int16 { return int16(i >> 16) }

// String formats the instruction for listings, e.g. "LOAD_INT 1 -7".
func (i Instruction) String() string {
	info := GetOpcodeInfo(i.Op())
	switch info.Format {
	case FormatA:
		return fmt.Sprintf("%s %d", info.Name, i.A())
	case FormatABool:
		return fmt.Sprintf("%s %d %t", info.Name, i.A(), i.B() != 0)
	case FormatASInt:
		return fmt.Sprintf("%s %d %d", info.Name, i.A(), i.SB())
	case FormatAConst, FormatACount:
		return fmt.Sprintf("%s %d %d", info.Name, i.A(), i.B())
	default:
		panic(fmt.Sprintf("bytecode: unhandled operand format %d", info.Format))
	}
}
