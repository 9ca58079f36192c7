package command

import (
	"encoding/base64"
	"fmt"

	"github.com/ProtonMail/photon/imap/encoder"
)

// AuthenticateCommand starts a SASL exchange. InitialResponse is only sent when non-nil
// (SASL-IR); an empty, non-nil initial response is written as "=".
type AuthenticateCommand struct {
	Mechanism       string
	InitialResponse []byte
}

func (l AuthenticateCommand) String() string {
	return fmt.Sprintf("AUTHENTICATE %v InitialResponse=%v", l.Mechanism, l.InitialResponse != nil)
}

func (l AuthenticateCommand) SanitizedString() string {
	return l.String()
}

func (l AuthenticateCommand) Encode(b *encoder.Buffer) error {
	// authenticate    = "AUTHENTICATE" SP auth-type [SP initial-resp]
	b.WriteAtom("AUTHENTICATE")
	b.WriteSpace()
	b.WriteAtom(l.Mechanism)

	if l.InitialResponse != nil {
		b.WriteSpace()

		switch {
		case b.Options().LoggingMode:
			b.WriteString("<redacted>")

		case len(l.InitialResponse) == 0:
			b.WriteString("=")

		default:
			b.WriteString(base64.StdEncoding.EncodeToString(l.InitialResponse))
		}
	}

	return nil
}

// ContinuationResponse answers an authentication challenge with the given (unencoded) data.
// Cancel aborts the exchange instead.
type ContinuationResponse struct {
	Data   []byte
	Cancel bool
}

func (l ContinuationResponse) String() string {
	return fmt.Sprintf("CONTINUATION-RESPONSE %v", l.Data)
}

func (l ContinuationResponse) SanitizedString() string {
	return fmt.Sprintf("CONTINUATION-RESPONSE Size=%v", len(l.Data))
}

func (l ContinuationResponse) Encode(b *encoder.Buffer) error {
	switch {
	case l.Cancel:
		b.WriteString("*")

	case b.Options().LoggingMode:
		b.WriteString("<redacted>")

	default:
		b.WriteString(base64.StdEncoding.EncodeToString(l.Data))
	}

	b.WriteCRLF()

	return nil
}
