package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

type CapabilityCommand struct{}

func (l CapabilityCommand) String() string {
	return "CAPABILITY"
}

func (l CapabilityCommand) SanitizedString() string {
	return l.String()
}

func (l CapabilityCommand) Encode(b *encoder.Buffer) error {
	b.WriteAtom("CAPABILITY")
	return nil
}
