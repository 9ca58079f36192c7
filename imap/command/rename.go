package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type RenameCommand struct {
	From string
	To   string
}

func (l RenameCommand) String() string {
	return fmt.Sprintf("RENAME '%v' '%v'", l.From, l.To)
}

func (l RenameCommand) SanitizedString() string {
	return fmt.Sprintf("RENAME '%v' '%v'", sanitizeString(l.From), sanitizeString(l.To))
}

func (l RenameCommand) Encode(b *encoder.Buffer) error {
	// rename          = "RENAME" SP mailbox SP mailbox
	b.WriteAtom("RENAME")

	for _, mailbox := range []string{l.From, l.To} {
		b.WriteSpace()

		if _, err := b.WriteMailbox(mailbox); err != nil {
			return err
		}
	}

	return nil
}
