package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type DeleteCommand struct {
	Mailbox string
}

func (l DeleteCommand) String() string {
	return fmt.Sprintf("DELETE '%v'", l.Mailbox)
}

func (l DeleteCommand) SanitizedString() string {
	return fmt.Sprintf("DELETE '%v'", sanitizeString(l.Mailbox))
}

func (l DeleteCommand) Encode(b *encoder.Buffer) error {
	// delete          = "DELETE" SP mailbox
	b.WriteAtom("DELETE")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
