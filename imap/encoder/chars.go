package encoder

// isAtomChar reports whether b is an ASTRING-CHAR as defined in RFC 3501:
// any CHAR except atom-specials, with resp-specials (']') allowed.
func isAtomChar(b byte) bool {
	if b <= 0x1f || b >= 0x7f {
		return false
	}

	switch b {
	case '(', ')', '{', ' ', '%', '*', '"', '\\':
		return false
	}

	return true
}

// isQuotedChar reports whether b may appear inside a quoted string, possibly escaped.
func isQuotedChar(b byte) bool {
	return b != '\r' && b != '\n' && b != 0 && b < 0x80
}

func isAtom(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !isAtomChar(s[i]) {
			return false
		}
	}

	return true
}

func isQuotable(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isQuotedChar(s[i]) {
			return false
		}
	}

	return true
}
