// Package encoder turns structured IMAP commands into bytes, recording every point
// at which the client must wait for a continuation request before writing more.
package encoder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/utf7"
)

// DateTimeLayout is the IMAP date-time format used by APPEND.
const DateTimeLayout = "_2-Jan-2006 15:04:05 -0700"

const redacted = "<redacted>"

// Chunk is a span of encoded bytes. WaitForContinuation is set when the span ends at a
// synchronizing literal header, in which case the remaining bytes may only be written once
// the server has sent a continuation request.
type Chunk struct {
	Bytes               []byte
	WaitForContinuation bool
}

// Buffer accumulates the encoding of a command stream.
type Buffer struct {
	options Options

	data  []byte
	stops []int
	read  int

	encodedCatenateElement bool
}

// NewBuffer returns a buffer writing into buf (which may be nil) with the given options.
func NewBuffer(buf []byte, options Options) *Buffer {
	return &Buffer{
		options: options,
		data:    buf[:0],
	}
}

func (b *Buffer) Options() Options {
	return b.options
}

// EncodedAtLeastOneCatenateElement reports whether a catenate part has already been written, in
// which case the next one must be separated by a space.
func (b *Buffer) EncodedAtLeastOneCatenateElement() bool {
	return b.encodedCatenateElement
}

func (b *Buffer) SetEncodedAtLeastOneCatenateElement(encoded bool) {
	b.encodedCatenateElement = encoded
}

// NextChunk returns the bytes up to the next continuation point, or all remaining bytes.
func (b *Buffer) NextChunk() Chunk {
	end, wait := len(b.data), false

	if len(b.stops) > 0 {
		end, b.stops, wait = b.stops[0], b.stops[1:], true
	}

	chunk := Chunk{Bytes: b.data[b.read:end], WaitForContinuation: wait}
	b.read = end

	return chunk
}

// HasMoreChunks reports whether NextChunk would return any bytes.
func (b *Buffer) HasMoreChunks() bool {
	return b.read < len(b.data) || len(b.stops) > 0
}

// Bytes returns everything written so far, independent of how much has been chunked.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) String() string {
	return string(b.data)
}

func (b *Buffer) WriteString(s string) int {
	b.data = append(b.data, s...)
	return len(s)
}

func (b *Buffer) WriteBytes(p []byte) int {
	b.data = append(b.data, p...)
	return len(p)
}

func (b *Buffer) WriteSpace() int {
	return b.WriteString(" ")
}

func (b *Buffer) WriteCRLF() int {
	return b.WriteString("\r\n")
}

// WriteAtom writes s verbatim. Callers only pass protocol keywords.
func (b *Buffer) WriteAtom(s string) int {
	return b.WriteString(s)
}

// WriteQuoted writes s as a quoted string, escaping quoted-specials.
func (b *Buffer) WriteQuoted(s string) int {
	var sb strings.Builder

	sb.WriteByte('"')

	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}

		sb.WriteByte(s[i])
	}

	sb.WriteByte('"')

	return b.WriteString(sb.String())
}

// WriteLiteral writes a literal header followed by its payload.
func (b *Buffer) WriteLiteral(p []byte) int {
	n := b.WriteLiteralHeader(len(p))

	if b.options.LoggingMode {
		return n + b.WriteString(fmt.Sprintf("<%v bytes>", len(p)))
	}

	return n + b.WriteBytes(p)
}

// WriteLiteralHeader writes a literal header for a payload of the given size. If the literal is
// synchronizing and non-empty, a continuation point is recorded after the header.
func (b *Buffer) WriteLiteralHeader(size int) int {
	if b.options.nonSynchronizing(size) {
		return b.WriteString("{" + strconv.Itoa(size) + "+}\r\n")
	}

	n := b.WriteString("{" + strconv.Itoa(size) + "}\r\n")

	if size > 0 {
		b.stops = append(b.stops, len(b.data))
	}

	return n
}

// WriteAString writes s as an atom if possible, otherwise as a quoted string,
// otherwise as a literal.
func (b *Buffer) WriteAString(s string) int {
	switch {
	case isAtom(s):
		return b.WriteString(s)

	case isQuotable(s):
		return b.WriteQuoted(s)

	default:
		return b.WriteLiteral([]byte(s))
	}
}

// WriteSensitiveAString behaves like WriteAString but redacts s in logging mode.
func (b *Buffer) WriteSensitiveAString(s string) int {
	if b.options.LoggingMode {
		return b.WriteString(redacted)
	}

	return b.WriteAString(s)
}

// WriteMailbox writes a mailbox name, encoding it to modified UTF-7.
func (b *Buffer) WriteMailbox(name string) (int, error) {
	if strings.EqualFold(name, "INBOX") {
		return b.WriteString("INBOX"), nil
	}

	encoded, err := utf7.Encoding.NewEncoder().String(name)
	if err != nil {
		return 0, fmt.Errorf("failed to encode mailbox name: %w", err)
	}

	return b.WriteAString(encoded), nil
}

// WriteFlags writes a parenthesised flag list.
func (b *Buffer) WriteFlags(flags []string) int {
	return b.WriteList(flags)
}

// WriteList writes the given atoms as a parenthesised, space separated list.
func (b *Buffer) WriteList(atoms []string) int {
	return b.WriteString("(" + strings.Join(atoms, " ") + ")")
}

func (b *Buffer) WriteDateTime(dt time.Time) int {
	return b.WriteQuoted(dt.Format(DateTimeLayout))
}

func (b *Buffer) WriteNumber(n int) int {
	return b.WriteString(strconv.Itoa(n))
}
