package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type NoopCommand struct{}

func (l NoopCommand) String() string {
	return "NOOP"
}

func (l NoopCommand) SanitizedString() string {
	return l.String()
}

func (l NoopCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("NOOP")
	return nil
}
