package imap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCapabilities(t *testing.T) {
	caps := ParseCapabilities("IMAP4rev1  IDLE LITERAL+ AUTH=PLAIN")

	require.Equal(t, []Capability{IMAP4rev1, IDLE, LiteralPlus, "AUTH=PLAIN"}, caps)
	require.True(t, HasCapability(caps, "idle"))
	require.True(t, HasCapability(caps, AuthCapability("plain")))
	require.False(t, HasCapability(caps, LiteralMinus))
}

func TestCapability_Mechanism(t *testing.T) {
	require.Equal(t, "XOAUTH2", Capability("AUTH=XOAUTH2").Mechanism())
	require.True(t, Capability("auth=plain").IsAuth())
	require.Empty(t, IDLE.Mechanism())
}
