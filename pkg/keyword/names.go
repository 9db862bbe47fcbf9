package keyword

// MaxKeywordLength is the number of significant characters of a deck keyword.
const MaxKeywordLength = 8

// deckNameWidth is MaxKeywordLength plus the column reserved for a following separator.
const deckNameWidth = MaxKeywordLength + 1

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// IsSeparator reports whether c ends a deck keyword token.
func IsSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f', '/', '\'', '"':
		return true
	}
	return false
}

// ValidNameStart reports whether name may start a deck keyword.
func ValidNameStart(name string) bool {
	if name == "" || len(name) > MaxKeywordLength {
		return false
	}
	return isAlpha(name[0])
}

// ValidInternalName reports whether name can be the canonical name of a schema.
func ValidInternalName(name string) bool {
	if len(name) < 2 || !isAlpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if c := name[i]; !isAlnum(c) && c != '_' {
			return false
		}
	}
	return true
}

// ValidDeckName reports whether name is a syntactically valid deck keyword.
func ValidDeckName(name string) bool {
	if !ValidNameStart(name) {
		return false
	}
	for i := 1; i < len(name); i++ {
		switch c := name[i]; {
		case isAlnum(c), c == '-', c == '_', c == '+':
		default:
			return false
		}
	}
	return true
}

// DeckName extracts the keyword candidate from the start of a deck line.
func DeckName(token string) string {
	for i := 0; i < len(token) && i < deckNameWidth; i++ {
		if IsSeparator(token[i]) {
			return token[:i]
		}
	}
	if len(token) > deckNameWidth {
		return token[:deckNameWidth]
	}
	return token
}
