package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type LoginCommand struct {
	UserID   string
	Password string
}

func (l LoginCommand) String() string {
	return fmt.Sprintf("LOGIN '%v' '%v'", l.UserID, l.Password)
}

func (l LoginCommand) SanitizedString() string {
	return fmt.Sprintf("LOGIN '%v' <PASSWORD>", sanitizeString(l.UserID))
}

func (l LoginCommand) Encode(b *encoder.Buffer) error {
	// login           = "LOGIN" SP userid SP password
	b.WriteAtom("LOGIN")
	b.WriteSpace()
	b.WriteAString(l.UserID)
	b.WriteSpace()
	b.WriteSensitiveAString(l.Password)

	return nil
}
