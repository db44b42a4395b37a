package roster

import (
	"sync"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

// Cache holds the locally known HCP records. Reads return copies so callers
// can never mutate the cached slice.
type Cache struct {
	mu   sync.RWMutex
	hcps []model.HCP
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{}
}

// Replace swaps the whole roster for hcps, as a successful fetch does.
func (c *Cache) Replace(hcps []model.HCP) {
	cp := make([]model.HCP, len(hcps))
	copy(cp, hcps)

	c.mu.Lock()
	c.hcps = cp
	c.mu.Unlock()
}

// Append adds a newly created HCP to the end of the roster.
func (c *Cache) Append(h model.HCP) {
	c.mu.Lock()
	c.hcps = append(c.hcps, h)
	c.mu.Unlock()
}

// All returns a copy of the roster in its stored order.
func (c *Cache) All() []model.HCP {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View(c.hcps).All()
}

// Len returns the number of cached HCPs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hcps)
}

// FindByID returns the first HCP with the given id.
func (c *Cache) FindByID(id int) (model.HCP, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View(c.hcps).FindByID(id)
}

// FindByName returns the first HCP whose name matches exactly (case-sensitive).
func (c *Cache) FindByName(name string) (model.HCP, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View(c.hcps).FindByName(name)
}

// View is a read-only roster snapshot used by pure consumers such as the
// draft reconciler.
type View []model.HCP

// All returns a copy of the view.
func (v View) All() []model.HCP {
	cp := make([]model.HCP, len(v))
	copy(cp, v)
	return cp
}

// FindByID returns the first HCP with the given id.
func (v View) FindByID(id int) (model.HCP, bool) {
	for _, h := range v {
		if h.ID == id {
			return h, true
		}
	}
	return model.HCP{}, false
}

// FindByName returns the first HCP whose name matches exactly.
func (v View) FindByName(name string) (model.HCP, bool) {
	if name == "" {
		return model.HCP{}, false
	}
	for _, h := range v {
		if h.Name == name {
			return h, true
		}
	}
	return model.HCP{}, false
}
