package symbol

// NameMaker generates the names A, B, ... Z, AA, AB, ... in the manner of
// spreadsheet columns, for entities nobody named. The zero value starts at
// "A". A NameMaker is not safe for concurrent use.
type NameMaker struct {
	count int
}

// Next returns the next name and advances the sequence.
func (m *NameMaker) Next() Symbol {
	var buf [16]byte
	return FromBytes(m.next(&buf))
}

// NextIn interns the next name in t instead of the process-wide table and
// returns its ID there.
func (m *NameMaker) NextIn(t *Table) ID {
	var buf [16]byte
	id, _ := t.InternBytes(m.next(&buf))
	return id
}

func (m *NameMaker) next(buf *[16]byte) []byte {
	i := len(buf)
	for n := m.count + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	m.count++
	return buf[i:]
}

// Count returns the number of names generated so far.
func (m *NameMaker) Count() int {
	return m.count
}

func (m *NameMaker) Reset() {
	m.count = 0
}
