package regmap

import (
	"fmt"
	"strings"
)

// Access is a register's access mode as seen from software.
type Access string

const (
	ReadOnly  Access = "RO"
	WriteOnly Access = "WO"
	ReadWrite Access = "RW"
)

var accessAliases = map[string]Access{
	"ro":         ReadOnly,
	"r":          ReadOnly,
	"read-only":  ReadOnly,
	"readonly":   ReadOnly,
	"wo":         WriteOnly,
	"w":          WriteOnly,
	"write-only": WriteOnly,
	"writeonly":  WriteOnly,
	"rw":         ReadWrite,
	"read-write": ReadWrite,
	"readwrite":  ReadWrite,
}

// ParseAccess converts a textual access mode to an Access. Unknown modes
// are returned verbatim together with an ErrInvalidAccessMode error, so the
// caller may keep the value and let model validation report it.
func ParseAccess(s string) (Access, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if a, ok := accessAliases[key]; ok {
		return a, nil
	}
	return Access(strings.TrimSpace(s)), fmt.Errorf("%w: %q", ErrInvalidAccessMode, s)
}

// Valid reports whether a is one of the three recognised modes.
func (a Access) Valid() bool {
	switch a {
	case ReadOnly, WriteOnly, ReadWrite:
		return true
	}
	return false
}

// Readable reports whether a read accessor is generated for a.
func (a Access) Readable() bool { return a == ReadOnly || a == ReadWrite }

// Writable reports whether a write accessor is generated for a.
func (a Access) Writable() bool { return a == WriteOnly || a == ReadWrite }

func (a Access) String() string { return string(a) }
