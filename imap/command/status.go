package command

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/bradenaw/juniper/xslices"
)

type StatusAttribute int

const (
	StatusAttributeMessages StatusAttribute = iota
	StatusAttributeRecent
	StatusAttributeUIDNext
	StatusAttributeUIDValidity
	StatusAttributeUnseen
)

func (s StatusAttribute) String() string {
	switch s {
	case StatusAttributeRecent:
		return "RECENT"
	case StatusAttributeMessages:
		return "MESSAGES"
	case StatusAttributeUIDNext:
		return "UIDNEXT"
	case StatusAttributeUIDValidity:
		return "UIDVALIDITY"
	case StatusAttributeUnseen:
		return "UNSEEN"
	default:
		return "UNKNOWN"
	}
}

type StatusCommand struct {
	Mailbox    string
	Attributes []StatusAttribute
}

func (l StatusCommand) String() string {
	return fmt.Sprintf("STATUS '%v' %v", l.Mailbox, l.Attributes)
}

func (l StatusCommand) SanitizedString() string {
	return fmt.Sprintf("STATUS '%v' %v", sanitizeString(l.Mailbox), l.Attributes)
}

func (l StatusCommand) Encode(b *encoder.Buffer) error {
	// status          = "STATUS" SP mailbox SP "(" status-att *(SP status-att) ")"
	if len(l.Attributes) == 0 {
		return fmt.Errorf("STATUS requires at least one attribute")
	}

	b.WriteAtom("STATUS")
	b.WriteSpace()

	if _, err := b.WriteMailbox(l.Mailbox); err != nil {
		return err
	}

	b.WriteSpace()
	b.WriteList(xslices.Map(l.Attributes, func(attr StatusAttribute) string {
		return attr.String()
	}))

	return nil
}
