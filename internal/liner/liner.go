// Package liner reads complete response lines from an IMAP server, literals included.
package liner

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// rxLiteral matches a line that ends in a literal length indicator.
var rxLiteral = regexp.MustCompile(`\{(\d+)\}\r\n$`)

// maxLiteralSize bounds the literals accepted from the server.
const maxLiteralSize = 64 * 1024 * 1024

type Liner struct {
	br *bufio.Reader
}

func New(r io.Reader) *Liner {
	return &Liner{br: bufio.NewReader(r)}
}

// Read reads a full line. Servers never wait for continuation requests, so whenever the line ends in a
// literal header the literal and the rest of the line are read right away and appended.
func (l *Liner) Read() ([]byte, error) {
	line, err := l.br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	for segment := line; ; {
		length, ok, err := shouldReadLiteral(segment)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		literal := make([]byte, length)

		if _, err := io.ReadFull(l.br, literal); err != nil {
			return nil, err
		}

		line = append(line, literal...)

		rest, err := l.br.ReadBytes('\n')
		if err != nil {
			return nil, err
		}

		line, segment = append(line, rest...), rest
	}

	return line, nil
}

// shouldReadLiteral reports whether the line ends in a literal header, and the literal's length.
// The rest of the line follows even an empty literal.
func shouldReadLiteral(line []byte) (int, bool, error) {
	match := rxLiteral.FindSubmatch(line)
	if match == nil {
		return 0, false, nil
	}

	length, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, false, fmt.Errorf("bad literal length: %w", err)
	}

	if length > maxLiteralSize {
		return 0, false, fmt.Errorf("literal of %v bytes exceeds maximum size", length)
	}

	return length, true, nil
}
