// Package access decides whether a badge UID is authorized.
//
// UIDs are compared as normalized upper-case hex strings of whatever length
// the tag reports. There is no zero padding: a 4-byte UID such as 7F09D231
// never matches a 7-byte entry that happens to share its prefix.
package access

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Level is the authorization granted to a UID.
type Level int

const (
	Denied Level = iota
	Limited
	Granted
)

// ErrUnknownLevel is returned by ParseLevel for unrecognized names.
var ErrUnknownLevel = errors.New("unknown access level")

func (l Level) String() string {
	switch l {
	case Granted:
		return "granted"
	case Limited:
		return "limited"
	default:
		return "denied"
	}
}

// ParseLevel parses the config name of a level. An empty string is Granted,
// so a bare allow-list entry authorizes fully.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "granted":
		return Granted, nil
	case "limited":
		return Limited, nil
	case "denied":
		return Denied, nil
	}
	return Denied, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// FormatUID renders raw UID bytes as upper-case hex, two digits per byte.
func FormatUID(uid []byte) string {
	return strings.ToUpper(hex.EncodeToString(uid))
}

// Normalize strips whitespace and the common ':' and '-' separators and
// upper-cases the result.
func Normalize(uid string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, uid))
}

// Entry is one allow-list record. Exactly one of UID or Hash is expected;
// Hash is a bcrypt hash of the normalized UID.
type Entry struct {
	UID   string
	Hash  string
	Level Level
}

// List is an immutable allow-list. It is safe for concurrent use.
type List struct {
	plain  map[string]Level
	hashed []Entry
}

// NewList builds a list from entries. Later plain entries for the same UID
// override earlier ones.
func NewList(entries []Entry) *List {
	l := &List{plain: make(map[string]Level, len(entries))}
	for _, e := range entries {
		switch {
		case e.UID != "":
			l.plain[Normalize(e.UID)] = e.Level
		case e.Hash != "":
			l.hashed = append(l.hashed, e)
		}
	}
	return l
}

// Lookup returns the level for uid, or Denied if it is not listed.
func (l *List) Lookup(uid string) Level {
	if l == nil {
		return Denied
	}
	n := Normalize(uid)
	if n == "" {
		return Denied
	}
	if level, ok := l.plain[n]; ok {
		return level
	}
	for _, e := range l.hashed {
		if bcrypt.CompareHashAndPassword([]byte(e.Hash), []byte(n)) == nil {
			return e.Level
		}
	}
	return Denied
}

// Len returns the number of entries.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.plain) + len(l.hashed)
}

// HashUID returns a bcrypt hash of the normalized uid for use as Entry.Hash.
func HashUID(uid string) (string, error) {
	n := Normalize(uid)
	if n == "" {
		return "", errors.New("empty uid")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(n), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash uid: %w", err)
	}
	return string(hash), nil
}
