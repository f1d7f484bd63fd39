package condition

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, n__BACKTICK__
	INT_LIT    // 123
	FLOAT_LIT  // 1.5, 1e-10
	STRING_LIT // "hello", 'hello'

	// Keywords
	AND
	OR
	NOT
	IN
	IS
	IF
	ELSE
	FOR
	TRUE
	FALSE
	NONE

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	DSTAR    // **
	SLASH    // /
	DSLASH   // //
	PERCENT  // %
	EQ       // ==
	NEQ      // !=
	LT       // <
	LEQ      // <=
	GT       // >
	GEQ      // >=
	NOT_IN   // not in (synthesized by the parser)
	IS_NOT   // is not (synthesized by the parser)
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	DOT      // .
)

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	IDENT:      "IDENT",
	INT_LIT:    "INT",
	FLOAT_LIT:  "FLOAT",
	STRING_LIT: "STRING",
	AND:        "and",
	OR:         "or",
	NOT:        "not",
	IN:         "in",
	IS:         "is",
	IF:         "if",
	ELSE:       "else",
	FOR:        "for",
	TRUE:       "True",
	FALSE:      "False",
	NONE:       "None",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	DSTAR:      "**",
	SLASH:      "/",
	DSLASH:     "//",
	PERCENT:    "%",
	EQ:         "==",
	NEQ:        "!=",
	LT:         "<",
	LEQ:        "<=",
	GT:         ">",
	GEQ:        ">=",
	NOT_IN:     "not in",
	IS_NOT:     "is not",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	DOT:        ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"is":    IS,
	"if":    IF,
	"else":  ELSE,
	"for":   FOR,
	"True":  TRUE,
	"False": FALSE,
	"None":  NONE,
}

// Token is a lexical token with its byte offset in the source.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
