package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type SubscribeCommand struct {
	Mailbox string
}

func (l SubscribeCommand) String() string {
	return fmt.Sprintf("SUBSCRIBE '%v'", l.Mailbox)
}

func (l SubscribeCommand) SanitizedString() string {
	return fmt.Sprintf("SUBSCRIBE '%v'", sanitizeString(l.Mailbox))
}

func (l SubscribeCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("SUBSCRIBE")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
