package symbol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Audit re-checks every entry against the hash index: each stored text must
// be found in its own bucket under its own ID, and the index must hold
// nothing else. It returns every problem found, joined.
func (t *Table) Audit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	n := t.store.Len()

	if text, _ := t.store.Get(0); text != "" {
		errs = append(errs, &AuditError{ID: NullID, Text: text, Reason: "null symbol has non-empty text"})
	}

	for i := 1; i < n; i++ {
		id := ID(i)
		text, _ := t.store.Get(uint32(i))
		switch found, ok := t.findLocked(text, hashText(text)); {
		case text == "":
			errs = append(errs, &AuditError{ID: id, Reason: "empty text stored outside the null slot"})
		case !ok:
			errs = append(errs, &AuditError{ID: id, Text: text, Reason: "missing from its hash bucket"})
		case found != id:
			errs = append(errs, &AuditError{ID: id, Text: text, Reason: fmt.Sprintf("interns to %d instead", found)})
		}
	}

	indexed := 0
	for slot, bucket := range t.index.buckets {
		for _, id := range bucket {
			indexed++
			text, ok := t.store.Get(uint32(id))
			if !ok {
				errs = append(errs, &AuditError{ID: id, Reason: "indexed but never stored"})
				continue
			}
			if t.index.slot(hashText(text)) != slot {
				errs = append(errs, &AuditError{ID: id, Text: text, Reason: fmt.Sprintf("indexed in bucket %d", slot)})
			}
		}
	}
	if indexed != n-1 {
		errs = append(errs, fmt.Errorf("symbol: index holds %d ids for %d entries", indexed, n-1))
	}
	if t.sorted != nil && t.sorted.Len() != n-1 {
		errs = append(errs, fmt.Errorf("symbol: alphabetical index holds %d texts for %d entries", t.sorted.Len(), n-1))
	}

	err := errors.Join(errs...)
	if err != nil {
		t.log.Errorf("audit found %d problem(s) in %d entries", len(errs), n)
	}
	return err
}

// Dump writes a human-readable listing of the table to w.
func (t *Table) Dump(w io.Writer) error {
	buckets := t.BucketStats()
	storage := t.StorageStats()
	entries := t.Entries()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "symbol table: %d entries, %d buckets (%d used, longest chain %d, mean %.2f)\n",
		len(entries), buckets.Buckets, buckets.Used, buckets.Longest, buckets.Mean)
	fmt.Fprintf(bw, "storage: %d chunk(s) of %d, %d text block(s) holding %d bytes\n",
		storage.Chunks, storage.ChunkSize, storage.Blocks, storage.TextBytes)
	for _, e := range entries {
		fmt.Fprintf(bw, "%6d  %q\n", e.ID, e.Text)
	}
	return bw.Flush()
}
