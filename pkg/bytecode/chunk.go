package bytecode

// SourceLocation maps an instruction to the source position it was compiled from.
type SourceLocation struct {
	Line   uint32 // 1-based, 0 if unknown
	Column uint32 // 1-based, 0 if unknown
}

// Chunk is a compiled program: a constant table plus the instruction
// sequence that references it. The compiler builds a chunk once and hands
// it to the VM, nothing mutates it afterwards.
type Chunk struct {
	// Constants holds distinct values in insertion order. Instructions
	// address it by index.
	Constants []Value

	// Code is the instruction sequence.
	Code []Instruction

	// SourceMap parallels Code. It may be shorter than Code when a chunk
	// is assembled by hand.
	SourceMap []SourceLocation

	// constIndex maps each constant to its position in Constants and
	// covers the first indexed entries.
	constIndex map[Value]int
	indexed    int
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:       make([]Instruction, 0, 32),
		Constants:  make([]Value, 0, 8),
		constIndex: make(map[Value]int),
	}
}

// AddConstant adds a value to the constant table and returns its index.
// If an Equal value is already present its index is returned instead and
// the table does not grow.
func (c *Chunk) AddConstant(v Value) int {
	c.syncIndex()
	if idx, ok := c.constIndex[v]; ok {
		return idx
	}
	idx := len(c.Constants)
	c.Constants = append(c.Constants, v)
	c.constIndex[v] = idx
	c.indexed++
	return idx
}

// FindConstant returns the index of v in the constant table, or -1.
func (c *Chunk) FindConstant(v Value) int {
	c.syncIndex()
	if idx, ok := c.constIndex[v]; ok {
		return idx
	}
	return -1
}

// syncIndex rebuilds the hash index when Constants was set directly.
func (c *Chunk) syncIndex() {
	if c.constIndex != nil && c.indexed == len(c.Constants) {
		return
	}
	c.constIndex = make(map[Value]int, len(c.Constants))
	for i, v := range c.Constants {
		if _, dup := c.constIndex[v]; !dup {
			c.constIndex[v] = i
		}
	}
	c.indexed = len(c.Constants)
}

// Constant returns the constant at index, and false if it is out of range.
func (c *Chunk) Constant(index int) (Value, bool) {
	if index < 0 || index >= len(c.Constants) {
		return Value{}, false
	}
	return c.Constants[index], true
}

// Emit appends an instruction with its source location and returns its offset.
func (c *Chunk) Emit(ins Instruction, loc SourceLocation) int {
	offset := len(c.Code)
	c.Code = append(c.Code, ins)
	c.SourceMap = append(c.SourceMap, loc)
	return offset
}

// Location returns the source location of the instruction at pc.
// Returns the zero location if no mapping exists.
func (c *Chunk) Location(pc int) SourceLocation {
	if pc < 0 || pc >= len(c.SourceMap) {
		return SourceLocation{}
	}
	return c.SourceMap[pc]
}

// CodeLen returns the number of instructions.
func (c *Chunk) CodeLen() int {
	return len(c.Code)
}

// ConstantCount returns the number of constants in the table.
func (c *Chunk) ConstantCount() int {
	return len(c.Constants)
}
