package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Token types
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenInvalid TokenType = iota // zero value; returned alongside lex errors
	TokenEOS

	// Names and literals
	TokenName    // print, _x1
	TokenString  // "hello", 'hello'
	TokenInteger // 42
	TokenFloat   // 3.14, 1e10, .5

	// Keywords
	keywordsStart
	TokenAnd
	TokenBreak
	TokenDo
	TokenElse
	TokenElseif
	TokenEnd
	TokenFalse
	TokenFor
	TokenFunction
	TokenGoto
	TokenIf
	TokenIn
	TokenLocal
	TokenNil
	TokenNot
	TokenOr
	TokenRepeat
	TokenReturn
	TokenThen
	TokenTrue
	TokenUntil
	TokenWhile
	keywordsEnd

	// Symbols
	symbolsStart
	TokenAdd         // +
	TokenSub         // -
	TokenMul         // *
	TokenDiv         // /
	TokenMod         // %
	TokenPow         // ^
	TokenLen         // #
	TokenBitAnd      // &
	TokenBitXor      // ~
	TokenBitOr       // |
	TokenShiftL      // <<
	TokenShiftR      // >>
	TokenIDiv        // //
	TokenEqual       // ==
	TokenNotEq       // ~=
	TokenLessEq      // <=
	TokenGreaterEq   // >=
	TokenLess        // <
	TokenGreater     // >
	TokenAssign      // =
	TokenLParen      // (
	TokenRParen      // )
	TokenLBrace      // {
	TokenRBrace      // }
	TokenLBracket    // [
	TokenRBracket    // ]
	TokenDoubleColon // ::
	TokenSemicolon   // ;
	TokenColon       // :
	TokenComma       // ,
	TokenDot         // .
	TokenConcat      // ..
	TokenDots        // ...
	symbolsEnd
)

var tokenNames = map[TokenType]string{
	TokenInvalid: "<invalid>",
	TokenEOS:     "<eos>",
	TokenName:    "<name>",
	TokenString:  "<string>",
	TokenInteger: "<integer>",
	TokenFloat:   "<float>",

	TokenAnd:      "and",
	TokenBreak:    "break",
	TokenDo:       "do",
	TokenElse:     "else",
	TokenElseif:   "elseif",
	TokenEnd:      "end",
	TokenFalse:    "false",
	TokenFor:      "for",
	TokenFunction: "function",
	TokenGoto:     "goto",
	TokenIf:       "if",
	TokenIn:       "in",
	TokenLocal:    "local",
	TokenNil:      "nil",
	TokenNot:      "not",
	TokenOr:       "or",
	TokenRepeat:   "repeat",
	TokenReturn:   "return",
	TokenThen:     "then",
	TokenTrue:     "true",
	TokenUntil:    "until",
	TokenWhile:    "while",

	TokenAdd:         "+",
	TokenSub:         "-",
	TokenMul:         "*",
	TokenDiv:         "/",
	TokenMod:         "%",
	TokenPow:         "^",
	TokenLen:         "#",
	TokenBitAnd:      "&",
	TokenBitXor:      "~",
	TokenBitOr:       "|",
	TokenShiftL:      "<<",
	TokenShiftR:      ">>",
	TokenIDiv:        "//",
	TokenEqual:       "==",
	TokenNotEq:       "~=",
	TokenLessEq:      "<=",
	TokenGreaterEq:   ">=",
	TokenLess:        "<",
	TokenGreater:     ">",
	TokenAssign:      "=",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenDoubleColon: "::",
	TokenSemicolon:   ";",
	TokenColon:       ":",
	TokenComma:       ",",
	TokenDot:         ".",
	TokenConcat:      "..",
	TokenDots:        "...",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t > keywordsStart && t < keywordsEnd
}

// IsSymbol reports whether t is an operator or punctuation symbol.
func (t TokenType) IsSymbol() bool {
	return t > symbolsStart && t < symbolsEnd
}

// Position is a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in bytes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // name, string contents, or the raw text of a number
	Int     int64    // value of a TokenInteger
	Float   float64  // value of a TokenFloat
	Pos     Position // start position
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOS:
		return "<eos>"
	case TokenName:
		return t.Literal
	case TokenString:
		if len(t.Literal) > 20 {
			return strconv.Quote(t.Literal[:20]) + "..."
		}
		return strconv.Quote(t.Literal)
	case TokenInteger, TokenFloat:
		return t.Literal
	default:
		return t.Type.String()
	}
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{}

func init() {
	for t := keywordsStart + 1; t < keywordsEnd; t++ {
		reservedWords[tokenNames[t]] = t
	}
}

// Keywords returns the reserved words in alphabetical order.
func Keywords() []string {
	words := make([]string, 0, keywordsEnd-keywordsStart-1)
	for t := keywordsStart + 1; t < keywordsEnd; t++ {
		words = append(words, tokenNames[t])
	}
	return words
}

// IsKeyword reports whether name is a reserved word and cannot be used as
// a global name.
func IsKeyword(name string) bool {
	_, ok := reservedWords[name]
	return ok
}
