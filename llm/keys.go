package llm

import "sync"

// keyRing hands out API keys round-robin so consecutive calls spread load
// across accounts.
type keyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

func newKeyRing(keys []string) *keyRing {
	return &keyRing{keys: append([]string(nil), keys...)}
}

// Next returns the next key and its index.
func (r *keyRing) Next() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.next
	r.next = (r.next + 1) % len(r.keys)
	return r.keys[idx], idx
}

func (r *keyRing) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
