package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
	goimap "github.com/emersion/go-imap"
)

type MoveCommand struct {
	UID     bool
	SeqSet  *goimap.SeqSet
	Mailbox string
}

func (l MoveCommand) String() string {
	return fmt.Sprintf("%vMOVE %v '%v'", uidPrefix(l.UID), l.SeqSet, l.Mailbox)
}

func (l MoveCommand) SanitizedString() string {
	return fmt.Sprintf("%vMOVE %v '%v'", uidPrefix(l.UID), l.SeqSet, sanitizeString(l.Mailbox))
}

func (l MoveCommand) Encode(b *encoder.Buffer) error {
	return encodeTransfer(b, "MOVE", l.UID, l.SeqSet, l.Mailbox)
}
