package symbol

const DefaultBuckets = 4096

// hashText is the Kernighan-Ritchie multiplicative string hash.
func hashText(text string) uint32 {
	var h uint32
	for i := 0; i < len(text); i++ {
		h = h*31 + uint32(text[i])
	}
	return h
}

// hashIndex maps a text hash to the IDs whose text falls in that bucket.
// It is only touched with the table lock held.
type hashIndex struct {
	buckets [][]ID
	mask    uint32
}

func newHashIndex(n int) hashIndex {
	if n <= 0 {
		n = DefaultBuckets
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return hashIndex{buckets: make([][]ID, size), mask: uint32(size - 1)}
}

func (x *hashIndex) slot(h uint32) int {
	return int(h & x.mask)
}

func (x *hashIndex) bucket(h uint32) []ID {
	return x.buckets[h&x.mask]
}

func (x *hashIndex) add(h uint32, id ID) {
	i := h & x.mask
	x.buckets[i] = append(x.buckets[i], id)
}

func (x *hashIndex) reset() {
	clear(x.buckets)
}

// BucketStats summarises how evenly texts spread over the hash index.
type BucketStats struct {
	Buckets int
	Used    int
	Longest int
	Mean    float64
}

func (x *hashIndex) stats() BucketStats {
	s := BucketStats{Buckets: len(x.buckets)}
	total := 0
	for _, b := range x.buckets {
		if len(b) == 0 {
			continue
		}
		s.Used++
		total += len(b)
		if len(b) > s.Longest {
			s.Longest = len(b)
		}
	}
	if s.Used > 0 {
		s.Mean = float64(total) / float64(s.Used)
	}
	return s
}
