package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
	goimap "github.com/emersion/go-imap"
)

type CopyCommand struct {
	UID     bool
	SeqSet  *goimap.SeqSet
	Mailbox string
}

func (l CopyCommand) String() string {
	return fmt.Sprintf("%vCOPY %v '%v'", uidPrefix(l.UID), l.SeqSet, l.Mailbox)
}

func (l CopyCommand) SanitizedString() string {
	return fmt.Sprintf("%vCOPY %v '%v'", uidPrefix(l.UID), l.SeqSet, sanitizeString(l.Mailbox))
}

func (l CopyCommand) Encode(b *encoder.Buffer) error {
	// copy            = "COPY" SP sequence-set SP mailbox
	return encodeTransfer(b, "COPY", l.UID, l.SeqSet, l.Mailbox)
}

func encodeTransfer(b *encoder.Buffer, name string, uid bool, seqSet *goimap.SeqSet, mailbox string) error {
	if seqSet == nil || seqSet.Empty() {
		return fmt.Errorf("%v requires a non-empty sequence set", name)
	}

	b.WriteAtom(uidPrefix(uid) + name)
	b.WriteSpace()
	b.WriteAtom(seqSet.String())
	b.WriteSpace()

	_, err := b.WriteMailbox(mailbox)

	return err
}

func uidPrefix(uid bool) string {
	if uid {
		return "UID "
	}

	return ""
}
