package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type UnsubscribeCommand struct {
	Mailbox string
}

func (l UnsubscribeCommand) String() string {
	return fmt.Sprintf("UNSUBSCRIBE '%v'", l.Mailbox)
}

func (l UnsubscribeCommand) SanitizedString() string {
	return fmt.Sprintf("UNSUBSCRIBE '%v'", sanitizeString(l.Mailbox))
}

func (l UnsubscribeCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("UNSUBSCRIBE")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
