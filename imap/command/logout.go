package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type LogoutCommand struct{}

func (l LogoutCommand) String() string {
	return "LOGOUT"
}

func (l LogoutCommand) SanitizedString() string {
	return l.String()
}

func (l LogoutCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("LOGOUT")
	return nil
}
