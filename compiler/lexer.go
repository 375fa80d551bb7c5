package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for moonlet source
// ---------------------------------------------------------------------------

const eof rune = -1

// Lexer tokenizes source text one token at a time.
type Lexer struct {
	input     string
	pos       int  // current position in input
	readPos   int  // reading position (after current char)
	ch        rune // current character, eof at end of input
	line      int  // current line (1-based)
	lineStart int  // offset of current line start

	ahead *Token // one token of lookahead, see peek
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPos
	}
	if l.readPos >= len(l.input) {
		l.ch = eof
		l.pos = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the position of the current character.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.pos - l.lineStart + 1,
	}
}

// NextToken returns the next token. At end of input it returns a TokenEOS
// token, and keeps returning one on every later call.
func (l *Lexer) NextToken() (Token, error) {
	if l.ahead != nil {
		tok := *l.ahead
		l.ahead = nil
		return tok, nil
	}
	return l.scan()
}

// peek returns the next token without consuming it.
func (l *Lexer) peek() (Token, error) {
	if l.ahead == nil {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.ahead = &tok
	}
	return *l.ahead, nil
}

func (l *Lexer) errorf(pos Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) scan() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.position()

	switch {
	case l.ch == eof:
		return Token{Type: TokenEOS, Pos: pos}, nil

	case isLetter(l.ch) || l.ch == '_':
		return l.readName(pos), nil

	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber(pos)

	case l.ch == '"' || l.ch == '\'':
		return l.readString(pos)

	default:
		return l.readSymbol(pos)
	}
}

// skipWhitespaceAndComments skips whitespace, line comments (-- ...) and
// long comments (--[[ ... ]], --[==[ ... ]==]).
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch != '-' || l.peekChar() != '-' {
			return nil
		}

		pos := l.position()
		l.readChar() // first -
		l.readChar() // second -

		if level, ok := l.longBracketLevel(); ok {
			if err := l.skipLongComment(pos, level); err != nil {
				return err
			}
			continue
		}

		for l.ch != '\n' && l.ch != eof {
			l.readChar()
		}
	}
}

// longBracketLevel reports whether the input at the current character opens
// a long bracket ([[ or [=*[) and returns the number of '=' signs.
func (l *Lexer) longBracketLevel() (int, bool) {
	if l.ch != '[' {
		return 0, false
	}
	i := l.pos + 1
	for i < len(l.input) && l.input[i] == '=' {
		i++
	}
	if i < len(l.input) && l.input[i] == '[' {
		return i - l.pos - 1, true
	}
	return 0, false
}

func (l *Lexer) skipLongComment(pos Position, level int) error {
	closing := "]" + strings.Repeat("=", level) + "]"
	body := l.pos + level + 2
	end := strings.Index(l.input[body:], closing)
	if end < 0 {
		return l.errorf(pos, "unterminated long comment")
	}
	stop := body + end + len(closing)
	for l.pos < stop && l.ch != eof {
		l.readChar()
	}
	return nil
}

// readName reads a name or reserved word.
func (l *Lexer) readName(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	literal := l.input[start:l.pos]

	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}
	return Token{Type: TokenName, Literal: literal, Pos: pos}
}

// readNumber reads a decimal integer or float literal.
func (l *Lexer) readNumber(pos Position) (Token, error) {
	start := l.pos
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return Token{}, l.malformedNumber(pos, start)
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// 3x, 3.4.5 and 3..4 are not numbers followed by something else.
	if isLetter(l.ch) || l.ch == '_' || l.ch == '.' {
		return Token{}, l.malformedNumber(pos, start)
	}

	literal := l.input[start:l.pos]

	if !isFloat {
		n, err := strconv.ParseInt(literal, 10, 64)
		if err == nil {
			return Token{Type: TokenInteger, Literal: literal, Int: n, Pos: pos}, nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return Token{}, l.malformedNumber(pos, start)
		}
		// Decimal integers that overflow become floats.
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Token{}, l.malformedNumber(pos, start)
	}
	return Token{Type: TokenFloat, Literal: literal, Float: f, Pos: pos}, nil
}

func (l *Lexer) malformedNumber(pos Position, start int) *LexError {
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		l.readChar()
	}
	return l.errorf(pos, "malformed number near '%s'", l.input[start:l.pos])
}

// readString reads a quoted string literal. Contents are taken verbatim.
func (l *Lexer) readString(pos Position) (Token, error) {
	quote := l.ch
	l.readChar() // consume opening quote

	start := l.pos
	for l.ch != quote {
		if l.ch == eof || l.ch == '\n' {
			return Token{}, l.errorf(pos, "unterminated string")
		}
		l.readChar()
	}
	literal := l.input[start:l.pos]
	l.readChar() // consume closing quote

	return Token{Type: TokenString, Literal: literal, Pos: pos}, nil
}

// readSymbol reads an operator or punctuation symbol, longest match first.
func (l *Lexer) readSymbol(pos Position) (Token, error) {
	ch := l.ch
	next := l.peekChar()

	var typ TokenType
	width := 1

	switch ch {
	case '+':
		typ = TokenAdd
	case '-':
		typ = TokenSub
	case '*':
		typ = TokenMul
	case '%':
		typ = TokenMod
	case '^':
		typ = TokenPow
	case '#':
		typ = TokenLen
	case '&':
		typ = TokenBitAnd
	case '|':
		typ = TokenBitOr
	case '(':
		typ = TokenLParen
	case ')':
		typ = TokenRParen
	case '{':
		typ = TokenLBrace
	case '}':
		typ = TokenRBrace
	case '[':
		typ = TokenLBracket
	case ']':
		typ = TokenRBracket
	case ';':
		typ = TokenSemicolon
	case ',':
		typ = TokenComma
	case '/':
		typ, width = pick(next == '/', TokenIDiv, TokenDiv)
	case '=':
		typ, width = pick(next == '=', TokenEqual, TokenAssign)
	case '~':
		typ, width = pick(next == '=', TokenNotEq, TokenBitXor)
	case ':':
		typ, width = pick(next == ':', TokenDoubleColon, TokenColon)
	case '<':
		switch next {
		case '<':
			typ, width = TokenShiftL, 2
		case '=':
			typ, width = TokenLessEq, 2
		default:
			typ = TokenLess
		}
	case '>':
		switch next {
		case '>':
			typ, width = TokenShiftR, 2
		case '=':
			typ, width = TokenGreaterEq, 2
		default:
			typ = TokenGreater
		}
	case '.':
		switch {
		case strings.HasPrefix(l.input[l.pos:], "..."):
			typ, width = TokenDots, 3
		case next == '.':
			typ, width = TokenConcat, 2
		default:
			typ = TokenDot
		}
	default:
		l.readChar()
		return Token{}, l.errorf(pos, "unexpected character %q", ch)
	}

	start := l.pos
	for i := 0; i < width; i++ {
		l.readChar()
	}
	return Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}, nil
}

// pick returns the two-character token if long is true, else the single one.
func pick(long bool, two, one TokenType) (TokenType, int) {
	if long {
		return two, 2
	}
	return one, 1
}

// Helper functions

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input, ending with TokenEOS.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOS {
			return tokens, nil
		}
	}
}
