// Package revision mints the tags that identify commits.
//
// A Tag names an edit, not a graph node: two commits on different branches
// carry the same Tag when they represent the same edit (for example a change
// resubmitted after a reconnect). Tag equality is therefore the only identity
// criterion the rebase engine uses when deciding that two commits cancel out.
//
// Tags are ULIDs. Only uniqueness is relied upon; the embedded timestamp and
// lexical ordering are incidental.
package revision

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// Tag is a process-wide unique revision identifier. The zero Tag means
// "no revision".
type Tag [16]byte

// None is the zero Tag.
var None Tag

// Mint returns a fresh Tag. Safe for concurrent use.
func Mint() Tag {
	return Tag(ulid.Make())
}

// Minter is the signature the rebase engine uses to obtain fresh tags.
// Tests substitute deterministic sequences.
type Minter func() Tag

// Parse decodes the canonical 26-character text form produced by String.
func Parse(s string) (Tag, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return None, err
	}
	return Tag(id), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Tag {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromBytes converts a 16-byte slice to a Tag.
func FromBytes(b []byte) (Tag, error) {
	if len(b) != 16 {
		return None, errors.New("revision tag must be 16 bytes")
	}
	return Tag(b), nil
}

// IsZero reports whether t is the zero Tag.
func (t Tag) IsZero() bool { return t == None }

// Bytes returns the raw 16 bytes.
func (t Tag) Bytes() []byte { return t[:] }

func (t Tag) String() string {
	if t.IsZero() {
		return ""
	}
	return ulid.ULID(t).String()
}

// Short returns the last 8 characters of the text form, enough to tell tags
// apart in logs.
func (t Tag) Short() string {
	s := t.String()
	if len(s) <= 8 {
		return s
	}
	return s[len(s)-8:]
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = None
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Sequence returns a Minter that yields tags 1, 2, 3... in their low bytes.
// Deterministic and not safe for concurrent use; intended for tests.
func Sequence() Minter {
	var n uint64
	return func() Tag {
		n++
		var t Tag
		for i := 0; i < 8; i++ {
			t[15-i] = byte(n >> (8 * i))
		}
		return t
	}
}
