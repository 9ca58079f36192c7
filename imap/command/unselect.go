package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type UnselectCommand struct{}

func (l UnselectCommand) String() string {
	return "UNSELECT"
}

func (l UnselectCommand) SanitizedString() string {
	return l.String()
}

func (l UnselectCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("UNSELECT")
	return nil
}
