package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

type LSubCommand struct {
	Mailbox     string
	LSubMailbox string
}

func (l LSubCommand) String() string {
	return fmt.Sprintf("LSUB '%v' '%v'", l.Mailbox, l.LSubMailbox)
}

func (l LSubCommand) SanitizedString() string {
	return l.String()
}

func (l LSubCommand) Encode(b *encoder.Buffer) error {
	return encodeList(b, "LSUB", l.Mailbox, l.LSubMailbox)
}
