package compiler

import "fmt"

// LexError reports malformed source text: an unrecognized character, a
// malformed number, or an unterminated string or comment.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// ParseError reports a token stream that does not match the grammar.
type ParseError struct {
	Pos   Position
	Token Token // the offending token
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token.Type == TokenEOS {
		return fmt.Sprintf("parse error at %s: %s near <eos>", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at %s: %s near '%s'", e.Pos, e.Msg, e.Token)
}
