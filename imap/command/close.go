package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type CloseCommand struct{}

func (l CloseCommand) String() string {
	return "CLOSE"
}

func (l CloseCommand) SanitizedString() string {
	return l.String()
}

func (l CloseCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("CLOSE")
	return nil
}
