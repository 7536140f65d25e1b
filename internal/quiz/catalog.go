package quiz

import (
	"sort"
	"sync"
)

// Catalog is an in-memory index of quizzes, replaced wholesale on reload.
// Reads at hub runtime never observe a partially loaded catalog.
type Catalog struct {
	mu      sync.RWMutex
	quizzes map[int]*Quiz
}

type Summary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"count"`
}

func NewCatalog() *Catalog {
	return &Catalog{
		quizzes: make(map[int]*Quiz),
	}
}

// Reload replaces the entire catalog from store records. A single malformed
// record fails the whole reload and leaves the previous catalog in place.
func (c *Catalog) Reload(records []Record) error {
	next := make(map[int]*Quiz, len(records))
	for _, rec := range records {
		q, err := Parse(rec)
		if err != nil {
			return err
		}
		next[rec.ID] = q
	}

	c.mu.Lock()
	c.quizzes = next
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Get(id int) (*Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quizzes[id]
	return q, ok
}

func (c *Catalog) List() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]Summary, 0, len(c.quizzes))
	for id, q := range c.quizzes {
		list = append(list, Summary{ID: id, Title: q.Title, QuestionCount: len(q.Questions)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quizzes)
}
