package command

import (
	"fmt"
	"time"

	"github.com/ProtonMail/photon/imap/encoder"
)

// AppendPart is one piece of an APPEND command. A full APPEND is sent as AppendStart,
// one or more messages (AppendBeginMessage, AppendMessageBytes..., AppendEndMessage)
// or catenations (AppendBeginCatenate, URL and data parts, AppendEndCatenate), then AppendFinish.
type AppendPart interface {
	StreamPart

	isAppendPart()
}

type AppendStart struct {
	Tag     string
	Mailbox string
}

func (AppendStart) isAppendPart() {}

func (l AppendStart) String() string {
	return fmt.Sprintf("%v APPEND '%v'", l.Tag, l.Mailbox)
}

func (l AppendStart) SanitizedString() string {
	return fmt.Sprintf("%v APPEND '%v'", l.Tag, sanitizeString(l.Mailbox))
}

func (l AppendStart) Encode(b *encoder.Buffer) error {
	b.WriteAtom(l.Tag)
	b.WriteString(" APPEND ")

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}

// AppendBeginMessage begins a message literal of the given size.
type AppendBeginMessage struct {
	Flags    []string
	DateTime time.Time
	Size     int
}

func (AppendBeginMessage) isAppendPart() {}

func (l AppendBeginMessage) String() string {
	return fmt.Sprintf("APPEND-MESSAGE Flags='%v' DateTime='%v' Size=%v", l.Flags, l.DateTime, l.Size)
}

func (l AppendBeginMessage) SanitizedString() string {
	return l.String()
}

func (l AppendBeginMessage) HasDateTime() bool {
	return l.DateTime != time.Time{}
}

func (l AppendBeginMessage) Encode(b *encoder.Buffer) error {
	writeAppendOptions(b, l.Flags, l.DateTime)

	b.WriteSpace()
	b.WriteLiteralHeader(l.Size)

	return nil
}

type AppendMessageBytes struct {
	Data []byte
}

func (AppendMessageBytes) isAppendPart() {}

func (l AppendMessageBytes) String() string {
	return fmt.Sprintf("APPEND-BYTES Literal=%v", l.Data)
}

func (l AppendMessageBytes) SanitizedString() string {
	return fmt.Sprintf("APPEND-BYTES Size=%v", len(l.Data))
}

func (l AppendMessageBytes) Encode(b *encoder.Buffer) error {
	writeRawBytes(b, l.Data)
	return nil
}

type AppendEndMessage struct{}

func (AppendEndMessage) isAppendPart() {}

func (AppendEndMessage) String() string {
	return "APPEND-END-MESSAGE"
}

func (l AppendEndMessage) SanitizedString() string {
	return l.String()
}

func (AppendEndMessage) Encode(*encoder.Buffer) error {
	return nil
}

// AppendBeginCatenate begins a CATENATE list (RFC 4469).
type AppendBeginCatenate struct {
	Flags    []string
	DateTime time.Time
}

func (AppendBeginCatenate) isAppendPart() {}

func (l AppendBeginCatenate) String() string {
	return fmt.Sprintf("APPEND-CATENATE Flags='%v' DateTime='%v'", l.Flags, l.DateTime)
}

func (l AppendBeginCatenate) SanitizedString() string {
	return l.String()
}

func (l AppendBeginCatenate) Encode(b *encoder.Buffer) error {
	writeAppendOptions(b, l.Flags, l.DateTime)

	b.WriteString(" CATENATE (")

	return nil
}

// AppendCatenateURL references an existing message part by IMAP URL.
type AppendCatenateURL struct {
	URL string
}

func (AppendCatenateURL) isAppendPart() {}

func (l AppendCatenateURL) String() string {
	return fmt.Sprintf("CATENATE-URL '%v'", l.URL)
}

func (l AppendCatenateURL) SanitizedString() string {
	return fmt.Sprintf("CATENATE-URL '%v'", sanitizeString(l.URL))
}

func (l AppendCatenateURL) Encode(b *encoder.Buffer) error {
	writeCatenateSeparator(b)

	b.WriteString("URL ")
	b.WriteAString(l.URL)

	return nil
}

// AppendCatenateDataBegin begins an inline TEXT literal of the given size.
type AppendCatenateDataBegin struct {
	Size int
}

func (AppendCatenateDataBegin) isAppendPart() {}

func (l AppendCatenateDataBegin) String() string {
	return fmt.Sprintf("CATENATE-TEXT Size=%v", l.Size)
}

func (l AppendCatenateDataBegin) SanitizedString() string {
	return l.String()
}

func (l AppendCatenateDataBegin) Encode(b *encoder.Buffer) error {
	writeCatenateSeparator(b)

	b.WriteString("TEXT ")
	b.WriteLiteralHeader(l.Size)

	return nil
}

type AppendCatenateDataBytes struct {
	Data []byte
}

func (AppendCatenateDataBytes) isAppendPart() {}

func (l AppendCatenateDataBytes) String() string {
	return fmt.Sprintf("CATENATE-BYTES Literal=%v", l.Data)
}

func (l AppendCatenateDataBytes) SanitizedString() string {
	return fmt.Sprintf("CATENATE-BYTES Size=%v", len(l.Data))
}

func (l AppendCatenateDataBytes) Encode(b *encoder.Buffer) error {
	writeRawBytes(b, l.Data)
	return nil
}

type AppendCatenateDataEnd struct{}

func (AppendCatenateDataEnd) isAppendPart() {}

func (AppendCatenateDataEnd) String() string {
	return "CATENATE-TEXT-END"
}

func (l AppendCatenateDataEnd) SanitizedString() string {
	return l.String()
}

func (AppendCatenateDataEnd) Encode(*encoder.Buffer) error {
	return nil
}

type AppendEndCatenate struct{}

func (AppendEndCatenate) isAppendPart() {}

func (AppendEndCatenate) String() string {
	return "APPEND-END-CATENATE"
}

func (l AppendEndCatenate) SanitizedString() string {
	return l.String()
}

func (AppendEndCatenate) Encode(b *encoder.Buffer) error {
	b.WriteString(")")
	return nil
}

// AppendFinish terminates the APPEND command line.
type AppendFinish struct{}

func (AppendFinish) isAppendPart() {}

func (AppendFinish) String() string {
	return "APPEND-FINISH"
}

func (l AppendFinish) SanitizedString() string {
	return l.String()
}

func (AppendFinish) Encode(b *encoder.Buffer) error {
	b.WriteCRLF()
	return nil
}

func writeAppendOptions(b *encoder.Buffer, flags []string, dateTime time.Time) {
	if len(flags) > 0 {
		b.WriteSpace()
		b.WriteFlags(flags)
	}

	if !dateTime.IsZero() {
		b.WriteSpace()
		b.WriteDateTime(dateTime)
	}
}

func writeCatenateSeparator(b *encoder.Buffer) {
	if b.EncodedAtLeastOneCatenateElement() {
		b.WriteSpace()
	}

	b.SetEncodedAtLeastOneCatenateElement(true)
}

func writeRawBytes(b *encoder.Buffer, data []byte) {
	if b.Options().LoggingMode {
		b.WriteString(fmt.Sprintf("<%v bytes>", len(data)))
	} else {
		b.WriteBytes(data)
	}
}
