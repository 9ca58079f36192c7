package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type ExpungeCommand struct{}

func (l ExpungeCommand) String() string {
	return "EXPUNGE"
}

func (l ExpungeCommand) SanitizedString() string {
	return l.String()
}

func (l ExpungeCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("EXPUNGE")
	return nil
}
