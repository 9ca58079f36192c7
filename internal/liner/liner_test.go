package liner

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinerRead(t *testing.T) {
	l := New(strings.NewReader("* OK [CAPABILITY IMAP4rev1] ready\r\nA1 OK done\r\n"))

	line, err := l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* OK [CAPABILITY IMAP4rev1] ready\r\n", string(line))

	line, err = l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "A1 OK done\r\n", string(line))

	_, err = l.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLinerReadOneLiteral(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[] {5}\r\nab\r\nc)\r\n"))

	line, err := l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[] {5}\r\nab\r\nc)\r\n", string(line))
}

func TestLinerReadTwoLiterals(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[HEADER] {4}\r\nab\r\n BODY[TEXT] {3}\r\nxyz)\r\n* 2 EXISTS\r\n"))

	line, err := l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[HEADER] {4}\r\nab\r\n BODY[TEXT] {3}\r\nxyz)\r\n", string(line))

	line, err = l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 2 EXISTS\r\n", string(line))
}

func TestLinerReadLiteralLookingLikeHeader(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[] {5}\r\n{1}\r\n)\r\n* 2 EXISTS\r\n"))

	line, err := l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[] {5}\r\n{1}\r\n)\r\n", string(line))

	line, err = l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 2 EXISTS\r\n", string(line))
}

func TestLinerReadLiteralTooLarge(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[] {99999999999}\r\n"))

	_, err := l.Read()
	assert.Error(t, err)
}

func TestLinerReadTruncatedLiteral(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[] {10}\r\nabc"))

	_, err := l.Read()
	assert.Error(t, err)
}

func TestLinerReadEmptyLiteral(t *testing.T) {
	l := New(strings.NewReader("* 1 FETCH (BODY[] {0}\r\n)\r\nA1 OK done\r\n"))

	line, err := l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "* 1 FETCH (BODY[] {0}\r\n)\r\n", string(line))

	line, err = l.Read()
	assert.NoError(t, err)
	assert.Equal(t, "A1 OK done\r\n", string(line))
}
