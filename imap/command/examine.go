package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type ExamineCommand struct {
	Mailbox string
}

func (l ExamineCommand) String() string {
	return fmt.Sprintf("EXAMINE '%v'", l.Mailbox)
}

func (l ExamineCommand) SanitizedString() string {
	return fmt.Sprintf("EXAMINE '%v'", sanitizeString(l.Mailbox))
}

func (l ExamineCommand) Encode(b *encoder.Buffer) error {
	// examine         = "EXAMINE" SP mailbox
	b.WriteAtom("EXAMINE")
	b.WriteSpace()

	_, err := b.WriteMailbox(l.Mailbox)

	return err
}
