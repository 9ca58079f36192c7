package imap

import (
	"strings"

	"github.com/bradenaw/juniper/xslices"
)

const (
	FlagSeen     = `\Seen`
	FlagAnswered = `\Answered`
	FlagFlagged  = `\Flagged`
	FlagDeleted  = `\Deleted`
	FlagDraft    = `\Draft`
	FlagRecent   = `\Recent` // Read-only!.
)

// AppendableFlags returns the flags with case-insensitive duplicates and the read-only \Recent flag removed.
// The order of the remaining flags is kept.
func AppendableFlags(flags []string) []string {
	seen := make(map[string]struct{}, len(flags))

	return xslices.Filter(flags, func(flag string) bool {
		key := strings.ToLower(flag)

		if _, ok := seen[key]; ok || key == strings.ToLower(FlagRecent) {
			return false
		}

		seen[key] = struct{}{}

		return true
	})
}
