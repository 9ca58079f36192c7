package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type ListCommand struct {
	Mailbox     string
	ListMailbox string
}

func (l ListCommand) String() string {
	return fmt.Sprintf("LIST '%v' '%v'", l.Mailbox, l.ListMailbox)
}

func (l ListCommand) SanitizedString() string {
	return l.String()
}

func (l ListCommand) Encode(b *encoder.Buffer) error {
	return encodeList(b, "LIST", l.Mailbox, l.ListMailbox)
}

// encodeList writes LIST and LSUB, which share a grammar:
// list            = "LIST" SP mailbox SP list-mailbox
func encodeList(b *encoder.Buffer, name, mailbox, listMailbox string) error {
	b.WriteAtom(name)
	b.WriteSpace()

	if mailbox == "" {
		b.WriteQuoted("")
	} else if _, err := b.WriteMailbox(mailbox); err != nil {
		return err
	}

	b.WriteSpace()

	if _, err := b.WriteMailbox(listMailbox); err != nil {
		return err
	}

	return nil
}
