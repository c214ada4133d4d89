package writer

import (
	"crypto/sha256"
	"sync"
)

// Digest is the SHA-256 of a payload
type Digest [sha256.Size]byte

// Index is the run-scoped set of payload digests. It is never persisted
// and never pruned while the run lasts.
type Index struct {
	mu   sync.Mutex
	seen map[Digest]struct{}
}

// NewIndex returns an empty digest set
func NewIndex() *Index {
	return &Index{seen: make(map[Digest]struct{})}
}

// CheckAndRegister hashes data and records it in one step. It reports true
// for exactly one of any number of callers presenting identical bytes.
func (x *Index) CheckAndRegister(data []byte) (Digest, bool) {
	sum := Digest(sha256.Sum256(data))

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.seen[sum]; ok {
		return sum, false
	}
	x.seen[sum] = struct{}{}
	return sum, true
}

// Forget removes a digest, used when the payload that registered it could
// not be written.
func (x *Index) Forget(d Digest) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.seen, d)
}

// Len returns the number of distinct payloads registered
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.seen)
}
