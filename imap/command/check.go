package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type CheckCommand struct{}

func (l CheckCommand) String() string {
	return "CHECK"
}

func (l CheckCommand) SanitizedString() string {
	return l.String()
}

func (l CheckCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("CHECK")
	return nil
}
