package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the chunk.
func (c *Chunk) Disassemble() string {
	return c.DisassembleWithName("")
}

// DisassembleWithName returns a listing with a name header.
func (c *Chunk) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	if fp, err := c.FingerprintHex(); err == nil {
		sb.WriteString(fmt.Sprintf("; Fingerprint: %s\n", fp[:16]))
	}
	sb.WriteString(fmt.Sprintf("; %d constants, %d instructions\n\n", len(c.Constants), len(c.Code)))

	// Constants
	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, v := range c.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %-8s %s\n", i, v.Kind(), displayConstant(v)))
		}
		sb.WriteString("\n")
	}

	// Code section
	sb.WriteString("; Code:\n")
	for pc := range c.Code {
		line := c.DisassembleInstruction(pc)
		if loc := c.Location(pc); loc.Line > 0 {
			sb.WriteString(fmt.Sprintf("%04d  %-30s ; line %d:%d\n", pc, line, loc.Line, loc.Column))
		} else {
			sb.WriteString(fmt.Sprintf("%04d  %s\n", pc, line))
		}
	}

	return sb.String()
}

// DisassembleInstruction formats the instruction at pc, annotating constant
// operands with the value they reference.
func (c *Chunk) DisassembleInstruction(pc int) string {
	if pc < 0 || pc >= len(c.Code) {
		return "<end of code>"
	}
	ins := c.Code[pc]
	if GetOpcodeInfo(ins.Op()).Format != FormatAConst {
		return ins.String()
	}
	v, ok := c.Constant(int(ins.B()))
	if !ok {
		return fmt.Sprintf("%s ; <bad constant>", ins)
	}
	return fmt.Sprintf("%s ; %s", ins, displayConstant(v))
}

func displayConstant(v Value) string {
	s := v.GoString()
	// Truncate long strings for readability
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
