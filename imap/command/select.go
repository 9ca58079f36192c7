package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type SelectCommand struct {
	Mailbox string
}

func (l SelectCommand) String() string {
	return fmt.Sprintf("SELECT '%v'", l.Mailbox)
}

func (l SelectCommand) SanitizedString() string {
	return fmt.Sprintf("SELECT '%v'", sanitizeString(l.Mailbox))
}

func (l SelectCommand) Encode(b *encoder.Buffer) error {
	// select          = "SELECT" SP mailbox
	b.WriteAtom("SELECT")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
