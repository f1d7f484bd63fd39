package condition

import "strings"

// lexer scans a rewritten condition and produces tokens
type lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or float literal, including exponents
// and a leading decimal point.
func (l *lexer) readNumber() (string, TokenType) {
	position := l.position
	tokenType := INT_LIT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && (isDigit(l.peekChar()) || position != l.position) {
		tokenType = FLOAT_LIT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			tokenType = FLOAT_LIT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[position:l.position], tokenType
}

// readString reads a quoted string and returns its unescaped value.
func (l *lexer) readString(quote byte) (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		if l.ch == 0 {
			return "", false
		}
		if l.ch == quote {
			l.readChar()
			return b.String(), true
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(l.ch)
			case 0:
				return "", false
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
			continue
		}
		b.WriteByte(l.ch)
	}
}

func (l *lexer) nextToken() Token {
	l.skipWhitespace()
	pos := l.position

	two := func(tt TokenType) Token {
		lit := l.input[l.position : l.position+2]
		l.readChar()
		l.readChar()
		return Token{Type: tt, Literal: lit, Pos: pos}
	}
	one := func(tt TokenType) Token {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: tt, Literal: lit, Pos: pos}
	}

	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case '=':
		if l.peekChar() == '=' {
			return two(EQ)
		}
		return one(ILLEGAL)
	case '!':
		if l.peekChar() == '=' {
			return two(NEQ)
		}
		return one(ILLEGAL)
	case '<':
		if l.peekChar() == '=' {
			return two(LEQ)
		}
		return one(LT)
	case '>':
		if l.peekChar() == '=' {
			return two(GEQ)
		}
		return one(GT)
	case '*':
		if l.peekChar() == '*' {
			return two(DSTAR)
		}
		return one(STAR)
	case '/':
		if l.peekChar() == '/' {
			return two(DSLASH)
		}
		return one(SLASH)
	case '+':
		return one(PLUS)
	case '-':
		return one(MINUS)
	case '%':
		return one(PERCENT)
	case '(':
		return one(LPAREN)
	case ')':
		return one(RPAREN)
	case '[':
		return one(LBRACKET)
	case ']':
		return one(RBRACKET)
	case ',':
		return one(COMMA)
	case '.':
		if isDigit(l.peekChar()) {
			lit, tt := l.readNumber()
			return Token{Type: tt, Literal: lit, Pos: pos}
		}
		return one(DOT)
	case '"', '\'':
		s, ok := l.readString(l.ch)
		if !ok {
			return Token{Type: ILLEGAL, Literal: "unterminated string", Pos: pos}
		}
		return Token{Type: STRING_LIT, Literal: s, Pos: pos}
	}
	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return Token{Type: lookupIdent(ident), Literal: ident, Pos: pos}
	}
	if isDigit(l.ch) {
		lit, tt := l.readNumber()
		return Token{Type: tt, Literal: lit, Pos: pos}
	}
	return one(ILLEGAL)
}

// tokenize returns all tokens up to and including EOF.
func (l *lexer) tokenize() []Token {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
