package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type IdleCommand struct{}

func (l IdleCommand) String() string {
	return "IDLE"
}

func (l IdleCommand) SanitizedString() string {
	return l.String()
}

func (l IdleCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("IDLE")
	return nil
}
