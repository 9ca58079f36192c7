package imap

import (
	"strings"

	"github.com/bradenaw/juniper/xslices"
)

type Capability string

const (
	IMAP4rev1     Capability = `IMAP4rev1`
	StartTLS      Capability = `STARTTLS`
	IDLE          Capability = `IDLE`
	UNSELECT      Capability = `UNSELECT`
	UIDPLUS       Capability = `UIDPLUS`
	MOVE          Capability = `MOVE`
	ID            Capability = `ID`
	LiteralPlus   Capability = `LITERAL+`
	LiteralMinus  Capability = `LITERAL-`
	Catenate      Capability = `CATENATE`
	MultiAppend   Capability = `MULTIAPPEND`
	SASLIR        Capability = `SASL-IR`
	LoginDisabled Capability = `LOGINDISABLED`
)

const authPrefix = "AUTH="

// AuthCapability returns the capability advertising the given SASL mechanism.
func AuthCapability(mechanism string) Capability {
	return Capability(authPrefix + strings.ToUpper(mechanism))
}

// IsAuth reports whether the capability advertises a SASL mechanism.
func (c Capability) IsAuth() bool {
	return strings.HasPrefix(strings.ToUpper(string(c)), authPrefix)
}

// Mechanism returns the SASL mechanism of an AUTH= capability, or an empty string.
func (c Capability) Mechanism() string {
	if !c.IsAuth() {
		return ""
	}

	return string(c)[len(authPrefix):]
}

// ParseCapabilities splits a space separated capability list as received from the server.
func ParseCapabilities(list string) []Capability {
	return xslices.Map(strings.Fields(list), func(s string) Capability {
		return Capability(s)
	})
}

// HasCapability reports whether the capability is present in the list, ignoring case.
func HasCapability(caps []Capability, c Capability) bool {
	return xslices.IndexFunc(caps, func(other Capability) bool {
		return strings.EqualFold(string(other), string(c))
	}) >= 0
}
