package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type CreateCommand struct {
	Mailbox string
}

func (l CreateCommand) String() string {
	return fmt.Sprintf("CREATE '%v'", l.Mailbox)
}

func (l CreateCommand) SanitizedString() string {
	return fmt.Sprintf("CREATE '%v'", sanitizeString(l.Mailbox))
}

func (l CreateCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("CREATE")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
