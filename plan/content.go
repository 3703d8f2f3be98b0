package plan

import "sync"

// ContentIndex is an in-memory content-addressed plan cache with the same
// keying as Store. It suits embedders that want plan reuse within a process
// without a database file.
type ContentIndex struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

// NewContentIndex creates an empty index.
func NewContentIndex() *ContentIndex {
	return &ContentIndex{plans: make(map[string][]byte)}
}

// Put stores a program and returns its content hash.
func (c *ContentIndex) Put(p *Program) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", err
	}
	hash, err := ContentHash(p)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.plans[hash] = data
	c.mu.Unlock()
	return hash, nil
}

// Get retrieves a program by content hash, or ErrPlanNotFound.
func (c *ContentIndex) Get(hash string) (*Program, error) {
	c.mu.RLock()
	data, ok := c.plans[hash]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrPlanNotFound
	}
	return Unmarshal(data)
}

// Delete removes a plan.
func (c *ContentIndex) Delete(hash string) {
	c.mu.Lock()
	delete(c.plans, hash)
	c.mu.Unlock()
}

// Len returns the number of stored plans.
func (c *ContentIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}

// Hashes returns the stored content hashes in unspecified order.
func (c *ContentIndex) Hashes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hashes := make([]string, 0, len(c.plans))
	for h := range c.plans {
		hashes = append(hashes, h)
	}
	return hashes
}
