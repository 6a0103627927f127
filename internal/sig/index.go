package sig

// Index is the dedup index: for each operation, the set of canonical keys
// already present in the result set. It carries no independent state — it is
// always re-derivable from the data points it was built from, which is what
// makes re-running a catalog against a checkpoint safe.
//
// Not safe for concurrent use; the run coordinator owns it exclusively.
type Index struct {
	byOp map[string]map[Key]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byOp: make(map[string]map[Key]struct{})}
}

// Contains reports whether the signature's key is already present.
// Pure membership test, no side effects.
func (ix *Index) Contains(s Signature) bool {
	keys, ok := ix.byOp[s.Op]
	if !ok {
		return false
	}
	_, ok = keys[s.Key()]
	return ok
}

// Add records the signature's key. Adding an already-present key is a no-op,
// never an error. Returns true if the key was newly added.
func (ix *Index) Add(s Signature) bool {
	keys, ok := ix.byOp[s.Op]
	if !ok {
		keys = make(map[Key]struct{})
		ix.byOp[s.Op] = keys
	}
	k := s.Key()
	if _, present := keys[k]; present {
		return false
	}
	keys[k] = struct{}{}
	return true
}

// Len returns the total number of keys across all operations.
func (ix *Index) Len() int {
	n := 0
	for _, keys := range ix.byOp {
		n += len(keys)
	}
	return n
}
