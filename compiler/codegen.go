package compiler

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/moonlet/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Codegen: single-pass compilation of tokens to bytecode
// ---------------------------------------------------------------------------

// Register slots. A general allocator comes with local variables; until
// then a statement only ever needs the callee and one argument.
const (
	calleeSlot uint8 = 0
	argSlot    uint8 = 1
)

// Compiler reads tokens from a Lexer and emits a bytecode chunk.
type Compiler struct {
	lex   *Lexer
	chunk *bytecode.Chunk
	log   commonlog.Logger
}

// NewCompiler creates a compiler reading from l.
func NewCompiler(l *Lexer) *Compiler {
	return &Compiler{
		lex:   l,
		chunk: bytecode.NewChunk(),
		log:   commonlog.GetLogger("moonlet.compiler"),
	}
}

// Compile compiles source text into a chunk.
func Compile(source string) (*bytecode.Chunk, error) {
	return CompileLexer(NewLexer(source))
}

// CompileLexer compiles the token stream of l into a chunk. On error no
// chunk is returned.
func CompileLexer(l *Lexer) (*bytecode.Chunk, error) {
	c := NewCompiler(l)
	if err := c.compileChunk(); err != nil {
		return nil, err
	}
	return c.chunk, nil
}

// compileChunk compiles statements until end of input:
//
//	chunk := { stat | ';' } <eos>
func (c *Compiler) compileChunk() error {
	for {
		tok, err := c.lex.peek()
		if err != nil {
			return err
		}
		switch tok.Type {
		case TokenEOS:
			c.log.Debugf("compiled %d instructions, %d constants", c.chunk.CodeLen(), c.chunk.ConstantCount())
			return nil
		case TokenSemicolon:
			if _, err := c.lex.NextToken(); err != nil {
				return err
			}
		case TokenName:
			if err := c.compileCall(); err != nil {
				return err
			}
		default:
			return c.errorAt(tok, "expected name")
		}
	}
}

// compileCall compiles a call statement:
//
//	stat := Name '(' literal ')' | Name String
func (c *Compiler) compileCall() error {
	name, err := c.lex.NextToken()
	if err != nil {
		return err
	}
	loc := location(name.Pos)

	idx, err := c.addConstant(name, bytecode.String(name.Literal))
	if err != nil {
		return err
	}
	c.emit(bytecode.GetGlobal(calleeSlot, idx), loc)

	tok, err := c.lex.NextToken()
	if err != nil {
		return err
	}

	switch tok.Type {
	case TokenLParen:
		arg, err := c.lex.NextToken()
		if err != nil {
			return err
		}
		if err := c.loadArgument(arg); err != nil {
			return err
		}
		closing, err := c.lex.NextToken()
		if err != nil {
			return err
		}
		if closing.Type != TokenRParen {
			return c.errorAt(closing, "expected ')'")
		}

	case TokenString:
		// f "str" is sugar for f("str")
		if err := c.loadArgument(tok); err != nil {
			return err
		}

	default:
		return c.errorAt(tok, "expected argument")
	}

	c.emit(bytecode.Call(calleeSlot, 1), loc)
	return nil
}

// loadArgument emits the instruction that materializes a literal argument
// in the argument slot.
func (c *Compiler) loadArgument(tok Token) error {
	loc := location(tok.Pos)

	switch tok.Type {
	case TokenNil:
		c.emit(bytecode.LoadNil(argSlot), loc)

	case TokenTrue, TokenFalse:
		c.emit(bytecode.LoadBool(argSlot, tok.Type == TokenTrue), loc)

	case TokenInteger:
		if tok.Int >= bytecode.MinImmediate && tok.Int <= bytecode.MaxImmediate {
			c.emit(bytecode.LoadInt(argSlot, int16(tok.Int)), loc)
			return nil
		}
		return c.loadConstant(tok, bytecode.Int(tok.Int))

	case TokenFloat:
		return c.loadConstant(tok, bytecode.Float(tok.Float))

	case TokenString:
		return c.loadConstant(tok, bytecode.String(tok.Literal))

	default:
		return c.errorAt(tok, "invalid argument")
	}
	return nil
}

func (c *Compiler) loadConstant(tok Token, v bytecode.Value) error {
	idx, err := c.addConstant(tok, v)
	if err != nil {
		return err
	}
	c.emit(bytecode.LoadConst(argSlot, idx), location(tok.Pos))
	return nil
}

// addConstant interns v and checks that its index fits an operand byte.
func (c *Compiler) addConstant(tok Token, v bytecode.Value) (uint8, error) {
	idx := c.chunk.AddConstant(v)
	if idx > bytecode.MaxConstIndex {
		return 0, c.errorAt(tok, fmt.Sprintf("too many constants (limit %d)", bytecode.MaxConstIndex+1))
	}
	return uint8(idx), nil
}

func (c *Compiler) emit(ins bytecode.Instruction, loc bytecode.SourceLocation) {
	pc := c.chunk.Emit(ins, loc)
	if c.log.AllowLevel(commonlog.Debug) {
		c.log.Debugf("%04d  %s", pc, c.chunk.DisassembleInstruction(pc))
	}
}

func (c *Compiler) errorAt(tok Token, msg string) *ParseError {
	return &ParseError{Pos: tok.Pos, Token: tok, Msg: msg}
}

func location(p Position) bytecode.SourceLocation {
	return bytecode.SourceLocation{Line: uint32(p.Line), Column: uint32(p.Column)}
}
