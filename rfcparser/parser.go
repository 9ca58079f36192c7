// Package rfcparser provides token level facilities for parsing IMAP server responses (RFC 3501).
package rfcparser

import (
	"errors"
	"fmt"
	"math"
)

// maxLiteralSize bounds literals the decoder accepts from a server.
const maxLiteralSize = 64 * 1024 * 1024

// Parser provide facilities to consumes tokens from a given scanner. Advance should be called at least once before
// any checks in order to initialize the previousToken.
type Parser struct {
	scanner       *Scanner
	previousToken Token
	currentToken  Token
}

type Error struct {
	Token   Token
	Message string
}

func (p *Error) Error() string {
	return fmt.Sprintf("[Error offset=%v]: %v", p.Token.Offset, p.Message)
}

func (p *Error) IsEOF() bool {
	return p.Token.TType == TokenTypeEOF
}

func IsError(err error) bool {
	var perr *Error
	return errors.As(err, &perr)
}

func NewParser(s *Scanner) *Parser {
	return &Parser{scanner: s}
}

// ParseAtom parses a run of ATOM-CHARs.
func (p *Parser) ParseAtom() (string, error) {
	if err := p.ConsumeWith(IsAtomChar, "Invalid character detected in atom"); err != nil {
		return "", err
	}

	atom, err := p.CollectBytesWhileMatchesWithPrevWith(IsAtomChar)
	if err != nil {
		return "", err
	}

	return string(atom), nil
}

// ParseTag parses a command tag: 1*<any ASTRING-CHAR except "+">.
func (p *Parser) ParseTag() (string, error) {
	isTagChar := func(tt TokenType) bool {
		return IsAStringChar(tt) && tt != TokenTypePlus
	}

	if err := p.ConsumeWith(isTagChar, "Invalid tag char detected"); err != nil {
		return "", err
	}

	tag, err := p.CollectBytesWhileMatchesWithPrevWith(isTagChar)
	if err != nil {
		return "", err
	}

	return string(tag), nil
}

// ParseQuoted parses a quoted string.
func (p *Parser) ParseQuoted() (string, error) {
	/*
		quoted          = DQUOTE *QUOTED-CHAR DQUOTE

		QUOTED-CHAR     = <any TEXT-CHAR except quoted-specials> /
		                  "\" quoted-specials
	*/
	if err := p.Consume(TokenTypeDQuote, `Expected '"' for quoted start`); err != nil {
		return "", err
	}

	var quoted []byte

	for !p.Check(TokenTypeDQuote) {
		if p.CheckWith(IsCTL) || p.Check(TokenTypeEOF) {
			return "", p.MakeError("unterminated quoted string")
		}

		if ok, err := p.Matches(TokenTypeBackslash); err != nil {
			return "", err
		} else if ok {
			if err := p.ConsumeWith(IsQuotedSpecial, `Expected '\' or '"' after '\' in quoted`); err != nil {
				return "", err
			}
		} else if err := p.Advance(); err != nil {
			return "", err
		}

		quoted = append(quoted, p.previousToken.Value)
	}

	if err := p.Consume(TokenTypeDQuote, `Expected '"' for quoted end`); err != nil {
		return "", err
	}

	return string(quoted), nil
}

// ParseLiteral parses a literal as defined in RFC3501. Server literals are never
// synchronizing, so the payload is read immediately after the header.
func (p *Parser) ParseLiteral() ([]byte, error) {
	/*
		literal         = "{" number "}" CRLF *CHAR8
	*/
	if err := p.Consume(TokenTypeLCurly, "expected '{' for literal start"); err != nil {
		return nil, err
	}

	literalSize, err := p.ParseNumber()
	if err != nil {
		return nil, err
	}

	if literalSize > maxLiteralSize {
		return nil, p.MakeError("literal size exceeds maximum size")
	}

	if err := p.Consume(TokenTypeRCurly, "expected '}' for literal end"); err != nil {
		return nil, err
	}

	if err := p.Consume(TokenTypeCR, "expected CR"); err != nil {
		return nil, err
	}

	if !p.Check(TokenTypeLF) {
		return nil, p.MakeError("expected LF after CR")
	}

	literal := make([]byte, literalSize)

	if literalSize > 0 {
		if _, err := p.scanner.advance(); err != nil {
			return nil, err
		}

		if err := p.scanner.ConsumeBytes(literal); err != nil {
			return nil, err
		}
	}

	// Need to advance parser after scanning literal so that next token is loaded.
	if err := p.Advance(); err != nil {
		return nil, err
	}

	return literal, nil
}

// ParseNumber parses a non decimal number without any signs.
func (p *Parser) ParseNumber() (int, error) {
	if err := p.Consume(TokenTypeDigit, "expected valid digit for number"); err != nil {
		return 0, err
	}

	number := uint64(ByteToInt(p.previousToken.Value))

	for {
		if ok, err := p.Matches(TokenTypeDigit); err != nil {
			return 0, err
		} else if !ok {
			break
		}

		number = number*10 + uint64(ByteToInt(p.previousToken.Value))

		if number > math.MaxUint32 {
			return 0, p.MakeError("number too large")
		}
	}

	return int(number), nil
}

// ParseText collects every byte up to, but not including, the terminating CRLF.
func (p *Parser) ParseText() (string, error) {
	text, err := p.CollectBytesWhileMatchesWith(func(tt TokenType) bool {
		return tt != TokenTypeCR && tt != TokenTypeLF && tt != TokenTypeEOF
	})
	if err != nil {
		return "", err
	}

	return string(text), nil
}

// Check if the next token matches the given input.
func (p *Parser) Check(tokenType TokenType) bool {
	return p.currentToken.TType == tokenType
}

// CheckWith checks if the next token matches the given condition.
func (p *Parser) CheckWith(f func(tokenType TokenType) bool) bool {
	return f(p.currentToken.TType)
}

// ConsumeNewLine issues two Consume calls for the `CRLF` token sequence.
func (p *Parser) ConsumeNewLine() error {
	if err := p.Consume(TokenTypeCR, "expected CR"); err != nil {
		return err
	}

	return p.Consume(TokenTypeLF, "expected LF after CR")
}

// Consume will advance the scanner to the next token if the current token matches the given token. If current
// token does not match, an error with given message will be returned.
func (p *Parser) Consume(tokenType TokenType, message string) error {
	return p.ConsumeWith(func(token TokenType) bool {
		return token == tokenType
	}, message)
}

// ConsumeWith will advance the scanner to the next token if the current token matches the given condition. If current
// token does not match, an error with given message will be returned.
func (p *Parser) ConsumeWith(f func(token TokenType) bool, message string) error {
	if f(p.currentToken.TType) {
		return p.Advance()
	}

	return p.MakeError(message)
}

// ConsumeBytesFold advances past the given byte sequence, comparing case insensitively.
func (p *Parser) ConsumeBytesFold(chars ...byte) error {
	for _, c := range chars {
		if ByteToLower(p.currentToken.Value) != ByteToLower(c) {
			return p.MakeError(fmt.Sprintf("expected byte value %x", c))
		}

		if err := p.Advance(); err != nil {
			return err
		}
	}

	return nil
}

// MatchesWith will advance the scanner to the next token and return true if the current token matches the given
// condition.
func (p *Parser) MatchesWith(f func(tokenType TokenType) bool) (bool, error) {
	if !p.CheckWith(f) {
		return false, nil
	}

	return true, p.Advance()
}

// Matches will advance the scanner to the next token and return true if the current token matches the given tokenType.
func (p *Parser) Matches(tokenType TokenType) (bool, error) {
	if !p.Check(tokenType) {
		return false, nil
	}

	return true, p.Advance()
}

// Advance advances the scanner to the next token.
func (p *Parser) Advance() error {
	p.previousToken = p.currentToken

	nextToken, err := p.scanner.ScanToken()
	if err != nil {
		return err
	}

	p.currentToken = nextToken

	return nil
}

// CollectBytesWhileMatchesWithPrevWith collects bytes from the token scanner while tokens match the given condition.
// This function INCLUDES the previous token consumed before this call.
func (p *Parser) CollectBytesWhileMatchesWithPrevWith(f func(tokenType TokenType) bool) ([]byte, error) {
	value := []byte{p.previousToken.Value}

	rest, err := p.CollectBytesWhileMatchesWith(f)
	if err != nil {
		return nil, err
	}

	return append(value, rest...), nil
}

// CollectBytesWhileMatchesWith collects bytes from the token scanner while tokens match the given condition. This
// function DOES NOT INCLUDE the previous token consumed before this call.
func (p *Parser) CollectBytesWhileMatchesWith(f func(tokenType TokenType) bool) ([]byte, error) {
	var value []byte

	for {
		if ok, err := p.MatchesWith(f); err != nil {
			return nil, err
		} else if !ok {
			return value, nil
		}

		value = append(value, p.previousToken.Value)
	}
}

func (p *Parser) CurrentToken() Token {
	return p.currentToken
}

func (p *Parser) MakeError(err string) error {
	return &Error{
		Token:   p.currentToken,
		Message: err,
	}
}

func IsAStringChar(tokenType TokenType) bool {
	/*
		ASTRING-CHAR   = ATOM-CHAR / resp-specials
	*/
	return IsAtomChar(tokenType) || IsRespSpecial(tokenType)
}

func IsAtomChar(tokenType TokenType) bool {
	/*
		ATOM-CHAR       = <any CHAR except atom-specials>

		atom-specials   = "(" / ")" / "{" / SP / CTL / list-wildcards /
		                  quoted-specials / resp-specials
	*/
	switch tokenType { //nolint:exhaustive
	case TokenTypeLParen, TokenTypeRParen, TokenTypeLCurly, TokenTypeSP, TokenTypeEOF,
		TokenTypePercent, TokenTypeAsterisk, TokenTypeExtendedChar:
		return false
	}

	return !IsQuotedSpecial(tokenType) && !IsRespSpecial(tokenType) && !IsCTL(tokenType)
}

func IsQuotedSpecial(tokenType TokenType) bool {
	return tokenType == TokenTypeDQuote || tokenType == TokenTypeBackslash
}

func IsRespSpecial(tokenType TokenType) bool {
	return tokenType == TokenTypeRBracket
}

func IsCTL(tokenType TokenType) bool {
	return tokenType == TokenTypeCTL || tokenType == TokenTypeCR || tokenType == TokenTypeLF
}

func ByteToInt(b byte) int {
	return int(b) - int(byte('0'))
}
