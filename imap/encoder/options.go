package encoder

import "github.com/ProtonMail/photon/imap"

// maxLiteralMinusSize is the largest literal that may be sent non-synchronizing under LITERAL- (RFC 7888).
const maxLiteralMinusSize = 4096

// Options controls how literals are written and whether sensitive data is redacted.
type Options struct {
	// UseSynchronizingLiteral writes "{n}" literals that require a continuation request.
	// It is the fallback whenever no non-synchronizing form applies.
	UseSynchronizingLiteral bool

	// UseNonSynchronizingLiteralPlus writes every literal as "{n+}" (LITERAL+).
	UseNonSynchronizingLiteralPlus bool

	// UseNonSynchronizingLiteralMinus writes literals of at most 4096 bytes as "{n+}" (LITERAL-).
	UseNonSynchronizingLiteralMinus bool

	// LoggingMode redacts passwords and literal payloads. Buffers written in this mode are for logs only.
	LoggingMode bool
}

func DefaultOptions() Options {
	return Options{UseSynchronizingLiteral: true}
}

// OptionsFromCapabilities returns the literal options the given server capabilities allow.
func OptionsFromCapabilities(caps []imap.Capability) Options {
	options := DefaultOptions()

	if imap.HasCapability(caps, imap.LiteralPlus) {
		options.UseNonSynchronizingLiteralPlus = true
	} else if imap.HasCapability(caps, imap.LiteralMinus) {
		options.UseNonSynchronizingLiteralMinus = true
	}

	return options
}

// SynchronizingOnly returns a copy of the options with all non-synchronizing literal forms disabled.
func (o Options) SynchronizingOnly() Options {
	o.UseSynchronizingLiteral = true
	o.UseNonSynchronizingLiteralPlus = false
	o.UseNonSynchronizingLiteralMinus = false

	return o
}

// WithLoggingMode returns a copy of the options with the logging mode set.
func (o Options) WithLoggingMode(loggingMode bool) Options {
	o.LoggingMode = loggingMode
	return o
}

func (o Options) nonSynchronizing(size int) bool {
	if o.UseNonSynchronizingLiteralPlus {
		return true
	}

	return o.UseNonSynchronizingLiteralMinus && size <= maxLiteralMinusSize
}
