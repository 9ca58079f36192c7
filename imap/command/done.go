package command

import (
	"github.com/ProtonMail/photon/imap/encoder"
)

// IdleDone is the untagged DONE line that terminates IDLE.
type IdleDone struct{}

func (l IdleDone) String() string {
	return "DONE"
}

func (l IdleDone) SanitizedString() string {
	return l.String()
}

func (l IdleDone) Encode(b *encoder.Buffer) error {
	b.WriteAtom("DONE")
	b.WriteCRLF()

	return nil
}
