// Package command holds the structured values a client sends to an IMAP server.
package command

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type Payload interface {
	String() string

	// SanitizedString should return the command payload with all the sensitive information stripped out.
	SanitizedString() string

	// Encode writes the command name and its arguments, without tag or trailing CRLF.
	Encode(b *encoder.Buffer) error
}

func sanitizeString(s string) string {
	hash := sha256.Sum256([]byte(s))

	return base64.StdEncoding.EncodeToString(hash[:])
}

// StreamPart is one unit of client output: a tagged command, a piece of an APPEND,
// the DONE that ends IDLE, or a response to an authentication challenge.
type StreamPart interface {
	String() string
	SanitizedString() string
	Encode(b *encoder.Buffer) error
}

// TagOf returns the tag introduced by the given part, if any.
func TagOf(part StreamPart) (string, bool) {
	switch part := part.(type) {
	case Command:
		return part.Tag, part.Tag != ""

	case *Command:
		return part.Tag, part.Tag != ""

	case AppendStart:
		return part.Tag, part.Tag != ""

	case *AppendStart:
		return part.Tag, part.Tag != ""

	default:
		return "", false
	}
}

// Command is a tagged command.
type Command struct {
	Tag     string
	Payload Payload
}

func (c Command) String() string {
	return fmt.Sprintf("%v %v", c.Tag, c.Payload.String())
}

func (c Command) SanitizedString() string {
	return fmt.Sprintf("%v %v", c.Tag, c.Payload.SanitizedString())
}

func (c Command) Encode(b *encoder.Buffer) error {
	b.WriteAtom(c.Tag)
	b.WriteSpace()

	if err := c.Payload.Encode(b); err != nil {
		return fmt.Errorf("failed to encode %v: %w", c.Tag, err)
	}

	b.WriteCRLF()

	return nil
}

// IsIdle reports whether the command starts IDLE.
func (c Command) IsIdle() bool {
	switch c.Payload.(type) {
	case IdleCommand, *IdleCommand:
		return true

	default:
		return false
	}
}

// IsAuthenticate reports whether the command starts an AUTHENTICATE exchange.
func (c Command) IsAuthenticate() bool {
	switch c.Payload.(type) {
	case AuthenticateCommand, *AuthenticateCommand:
		return true

	default:
		return false
	}
}

// Encode writes the given part into a fresh buffer with the given options.
func Encode(part StreamPart, buf []byte, options encoder.Options) (*encoder.Buffer, error) {
	b := encoder.NewBuffer(buf, options)

	if err := part.Encode(b); err != nil {
		return nil, err
	}

	return b, nil
}
