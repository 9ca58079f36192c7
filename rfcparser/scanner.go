package rfcparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

type TokenType int

const (
	TokenTypeEOF TokenType = iota
	TokenTypeError
	TokenTypeSP
	TokenTypeExclamation
	TokenTypeDQuote
	TokenTypeHash
	TokenTypeDollar
	TokenTypePercent
	TokenTypeAmpersand
	TokenTypeSQuote
	TokenTypeLParen
	TokenTypeRParen
	TokenTypeAsterisk
	TokenTypePlus
	TokenTypeComma
	TokenTypeMinus
	TokenTypePeriod
	TokenTypeSlash
	TokenTypeSemicolon
	TokenTypeColon
	TokenTypeLess
	TokenTypeEqual
	TokenTypeGreater
	TokenTypeQuestion
	TokenTypeAt
	TokenTypeLBracket
	TokenTypeRBracket
	TokenTypeCaret
	TokenTypeUnderscore
	TokenTypeBacktick
	TokenTypeLCurly
	TokenTypePipe
	TokenTypeRCurly
	TokenTypeTilde
	TokenTypeBackslash
	TokenTypeDigit
	TokenTypeChar
	TokenTypeExtendedChar
	TokenTypeCR
	TokenTypeLF
	TokenTypeCTL
)

// punctuation maps every printable, non alphanumeric ASCII byte to its token type.
var punctuation = map[byte]TokenType{
	' ': TokenTypeSP, '!': TokenTypeExclamation, '"': TokenTypeDQuote, '#': TokenTypeHash,
	'$': TokenTypeDollar, '%': TokenTypePercent, '&': TokenTypeAmpersand, '\'': TokenTypeSQuote,
	'(': TokenTypeLParen, ')': TokenTypeRParen, '*': TokenTypeAsterisk, '+': TokenTypePlus,
	',': TokenTypeComma, '-': TokenTypeMinus, '.': TokenTypePeriod, '/': TokenTypeSlash,
	';': TokenTypeSemicolon, ':': TokenTypeColon, '<': TokenTypeLess, '=': TokenTypeEqual,
	'>': TokenTypeGreater, '?': TokenTypeQuestion, '@': TokenTypeAt, '[': TokenTypeLBracket,
	']': TokenTypeRBracket, '^': TokenTypeCaret, '_': TokenTypeUnderscore, '`': TokenTypeBacktick,
	'{': TokenTypeLCurly, '|': TokenTypePipe, '}': TokenTypeRCurly, '~': TokenTypeTilde,
	'\\': TokenTypeBackslash,
}

type Token struct {
	TType  TokenType
	Value  byte
	Offset int
}

type Scanner struct {
	source      Reader
	currentByte byte
	offset      int
}

type Reader interface {
	io.Reader
	ReadByte() (byte, error)
}

func NewScanner(source io.Reader) *Scanner {
	if r, ok := source.(Reader); ok {
		return &Scanner{source: r}
	}

	return &Scanner{source: bufio.NewReader(source)}
}

// ConsumeBytes fills dst with raw bytes, starting with the byte of the most recently scanned token.
func (s *Scanner) ConsumeBytes(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}

	dst[0] = s.currentByte

	if _, err := io.ReadFull(s.source, dst[1:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}

		return err
	}

	s.offset += len(dst) - 1

	return nil
}

func (s *Scanner) ScanToken() (Token, error) {
	b, err := s.advance()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return s.makeEOF(), nil
		}

		return Token{}, err
	}

	switch {
	case isByteDigit(b):
		return s.makeToken(TokenTypeDigit), nil

	case isByteAlpha(b):
		return s.makeToken(TokenTypeChar), nil

	case isByteExtendedChar(b):
		return s.makeToken(TokenTypeExtendedChar), nil

	case b == '\r':
		return s.makeToken(TokenTypeCR), nil

	case b == '\n':
		return s.makeToken(TokenTypeLF), nil

	case isByteCTL(b):
		return s.makeToken(TokenTypeCTL), nil
	}

	if tt, ok := punctuation[b]; ok {
		return s.makeToken(tt), nil
	}

	return Token{}, fmt.Errorf("unexpected character %v", b)
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner) Offset() int {
	return s.offset
}

func (s *Scanner) advance() (byte, error) {
	b, err := s.source.ReadByte()
	if err != nil {
		return 0, err
	}

	s.currentByte = b
	s.offset++

	return b, nil
}

func (s *Scanner) makeToken(t TokenType) Token {
	return Token{
		TType:  t,
		Value:  s.currentByte,
		Offset: s.offset,
	}
}

func (s *Scanner) makeEOF() Token {
	return Token{
		TType:  TokenTypeEOF,
		Value:  0,
		Offset: s.offset,
	}
}

func isByteAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isByteDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isByteExtendedChar(b byte) bool {
	return b >= 128
}

func isByteCTL(b byte) bool {
	return b <= 31 || b == 127
}

func ByteToLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}
