package game

import (
	"strings"
)

// Letter is one of the 26 lowercase ASCII letters. Values outside a–z are
// rejected by ParseLetter and never stored.
type Letter byte

// ParseLetter validates a single raw token.
// Exactly one lowercase a–z character is accepted; upper case is rejected.
func ParseLetter(s string) (Letter, error) {
	if len(s) != 1 || s[0] < 'a' || s[0] > 'z' {
		return 0, Errorf(KindInvalidLetter, "invalid letter %q", s)
	}
	return Letter(s[0]), nil
}

// ParseWord converts raw tokens into letters.
// Fails atomically: one bad token and nothing is returned.
func ParseWord(tokens []string) ([]Letter, error) {
	out := make([]Letter, 0, len(tokens))
	for _, t := range tokens {
		l, err := ParseLetter(t)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ParseTarget splits a literal word into single-character tokens and parses them.
func ParseTarget(word string) ([]Letter, error) {
	return ParseWord(strings.Split(word, ""))
}

// Word joins letters back into a string.
func Word(letters []Letter) string {
	var b strings.Builder
	b.Grow(len(letters))
	for _, l := range letters {
		b.WriteByte(byte(l))
	}
	return b.String()
}

func (l Letter) String() string { return string(rune(l)) }

// MarshalText encodes the letter as a one-character string.
func (l Letter) MarshalText() ([]byte, error) { return []byte{byte(l)}, nil }

// UnmarshalText applies the same validation as ParseLetter.
func (l *Letter) UnmarshalText(b []byte) error {
	v, err := ParseLetter(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
