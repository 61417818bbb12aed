package symbol

import "strings"

// Symbol is a handle to an interned text in the process-wide table. The zero
// value is the null symbol. Symbols compare with == by ID.
type Symbol struct {
	id ID
}

// New interns text in the default table. Text the table rejects yields the
// null symbol and a logged warning; use Parse to get the error instead.
func New(text string) Symbol {
	t := Default()
	id, err := t.Intern(text)
	if err != nil {
		t.warnf("%v; using the null symbol", err)
	}
	return Symbol{id: id}
}

// FromBytes is New for byte input. b is never retained.
func FromBytes(b []byte) Symbol {
	t := Default()
	id, err := t.InternBytes(b)
	if err != nil {
		t.warnf("%v; using the null symbol", err)
	}
	return Symbol{id: id}
}

// Parse interns text in the default table, surfacing rejected input as an
// error.
func Parse(text string) (Symbol, error) {
	id, err := Default().Intern(text)
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{id: id}, nil
}

// ID returns the table ID of s. It is dense and unique, which makes it a
// good key for hash-based containers.
func (s Symbol) ID() ID {
	return s.id
}

// String resolves s to its canonical text.
func (s Symbol) String() string {
	if s.id == NullID {
		return ""
	}
	return Default().Text(s.id)
}

func (s Symbol) IsNull() bool {
	return s.id == NullID
}

// Less orders Symbols by creation, not by text.
func (s Symbol) Less(other Symbol) bool {
	return s.id < other.id
}

// LessText orders Symbols lexicographically by text.
func (s Symbol) LessText(other Symbol) bool {
	return s.String() < other.String()
}

// Compare compares the text of s with text lexicographically.
func (s Symbol) Compare(text string) int {
	return strings.Compare(s.String(), text)
}

// MarshalText encodes the text of s. IDs are process-local and never encoded.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Symbol) UnmarshalText(b []byte) error {
	id, err := Default().InternBytes(b)
	if err != nil {
		return err
	}
	s.id = id
	return nil
}
