package watcher

import (
	"sync"

	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
)

// HashCache remembers the input hash of each watched command so that file
// events which leave the content unchanged do not cause a re-run.
type HashCache struct {
	mu      sync.Mutex
	hasher  ports.Hasher
	entries map[domain.InternedString]string
}

// NewHashCache creates a new hash cache.
func NewHashCache(hasher ports.Hasher) *HashCache {
	return &HashCache{
		hasher:  hasher,
		entries: make(map[domain.InternedString]string),
	}
}

// Changed rehashes the inputs of cmds and reports whether any differ from the
// recorded hashes. The new hashes replace the old ones. Commands that only
// require files cannot be compared and always count as changed, as do
// commands whose inputs cannot be hashed.
func (h *HashCache) Changed(cmds []domain.Command, root string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := false
	for i := range cmds {
		cmd := &cmds[i]
		if len(cmd.Inputs) == 0 {
			if len(cmd.Requires) > 0 {
				changed = true
			}
			continue
		}

		hash, err := h.hasher.ComputeInputHash(cmd, cmd.Environment, root)
		if err != nil {
			delete(h.entries, cmd.Name)
			changed = true
			continue
		}
		if prev, ok := h.entries[cmd.Name]; !ok || prev != hash {
			changed = true
		}
		h.entries[cmd.Name] = hash
	}
	return changed
}

// Hash returns the recorded hash of the named command.
func (h *HashCache) Hash(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	hash, ok := h.entries[domain.NewInternedString(name)]
	return hash, ok
}
