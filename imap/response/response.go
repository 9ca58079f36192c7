// Package response holds the structured values decoded from server output.
package response

import (
	"fmt"
	"strconv"
	"strings"
)

type Status string

const (
	StatusOK  Status = "OK"
	StatusNo  Status = "NO"
	StatusBad Status = "BAD"
)

// Response is a decoded server response that is not a continuation request.
type Response interface {
	String() string

	isResponse()
}

// TagOf returns the tag of the response if it completes a command.
func TagOf(res Response) (string, bool) {
	switch res := res.(type) {
	case *Tagged:
		return res.Tag, true

	default:
		return "", false
	}
}

// Untagged is any "*" response that is neither FETCH nor BYE.
type Untagged struct {
	// Name is the response keyword, e.g. OK, CAPABILITY, EXISTS.
	Name string

	// Number is set for message data responses such as "* 3 EXISTS".
	Number    uint32
	HasNumber bool

	Code string
	Text string
}

func (*Untagged) isResponse() {}

func (r *Untagged) String() string {
	parts := []string{"*"}

	if r.HasNumber {
		parts = append(parts, fmt.Sprintf("%v", r.Number))
	}

	return joinResponse(append(parts, r.Name), r.Code, r.Text)
}

// Fetch is a "* n FETCH (...)" response. Data holds the raw attribute list, literals inlined.
type Fetch struct {
	SeqNum uint32
	Data   []byte
}

func (*Fetch) isResponse() {}

func (r *Fetch) String() string {
	return fmt.Sprintf("* %v FETCH %s", r.SeqNum, r.Data)
}

// List is a "* LIST" or "* LSUB" response. Mailbox is decoded from modified UTF-7;
// Delimiter is empty if the server sent NIL.
type List struct {
	Name       string
	Attributes []string
	Delimiter  string
	Mailbox    string
}

func (*List) isResponse() {}

func (r *List) String() string {
	delimiter := "NIL"

	if r.Delimiter != "" {
		delimiter = strconv.Quote(r.Delimiter)
	}

	return fmt.Sprintf("* %v (%v) %v %q", r.Name, strings.Join(r.Attributes, " "), delimiter, r.Mailbox)
}

// Tagged completes the command with the same tag.
type Tagged struct {
	Tag    string
	Status Status
	Code   string
	Text   string
}

func (*Tagged) isResponse() {}

func (r *Tagged) String() string {
	return joinResponse([]string{r.Tag, string(r.Status)}, r.Code, r.Text)
}

// Err returns nil if the command succeeded, otherwise an error carrying the status and text.
func (r *Tagged) Err() error {
	if r.Status == StatusOK {
		return nil
	}

	return &Error{Status: r.Status, Code: r.Code, Text: r.Text}
}

// Fatal is a BYE response: the server is closing the connection.
type Fatal struct {
	Code string
	Text string
}

func (*Fatal) isResponse() {}

func (r *Fatal) String() string {
	return joinResponse([]string{"*", "BYE"}, r.Code, r.Text)
}

// AuthenticationChallenge is a challenge delivered as a response by decoders that track AUTHENTICATE themselves.
type AuthenticationChallenge struct {
	Data []byte
}

func (*AuthenticationChallenge) isResponse() {}

func (r *AuthenticationChallenge) String() string {
	return fmt.Sprintf("+ <challenge %v bytes>", len(r.Data))
}

// IdleStarted is an IDLE confirmation delivered as a response by decoders that track IDLE themselves.
type IdleStarted struct{}

func (*IdleStarted) isResponse() {}

func (*IdleStarted) String() string {
	return "+ idling"
}

func joinResponse(parts []string, code, text string) string {
	if code != "" {
		parts = append(parts, "["+code+"]")
	}

	if text != "" {
		parts = append(parts, text)
	}

	return strings.Join(parts, " ")
}
