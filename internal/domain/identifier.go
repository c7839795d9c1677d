package domain

import (
	"strings"
	"unicode"
)

// Identifier is the normalized form of a user-supplied channel reference.
// Three shapes exist after normalization:
//
//	"@name"  public handle
//	"+hash"  private invite hash
//	"12345"  raw numeric id (forwarded from a private chat)
//
// The normalized string is the de-duplication key for join requests.
type Identifier string

// NormalizeIdentifier canonicalizes a handle, t.me link or invite link.
func NormalizeIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "t.me/")
	s = strings.TrimPrefix(s, "telegram.me/")
	s = strings.TrimSuffix(s, "/")

	// Private invite links: t.me/+hash and the legacy t.me/joinchat/hash.
	if rest, ok := strings.CutPrefix(s, "joinchat/"); ok {
		s = "+" + rest
	}
	if hash, ok := strings.CutPrefix(s, "+"); ok {
		if hash == "" {
			return "", ErrInvalidIdentifier
		}
		return Identifier("+" + hash), nil
	}

	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return "", ErrInvalidIdentifier
	}
	if isDigits(s) {
		return Identifier(s), nil
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", ErrInvalidIdentifier
		}
	}
	return Identifier("@" + s), nil
}

// IsInvite reports whether the identifier is a private invite hash.
func (id Identifier) IsInvite() bool {
	return strings.HasPrefix(string(id), "+")
}

// InviteHash returns the invite hash without the leading marker.
func (id Identifier) InviteHash() string {
	return strings.TrimPrefix(string(id), "+")
}

// Handle returns the public handle without the leading @.
func (id Identifier) Handle() string {
	return strings.TrimPrefix(string(id), "@")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
