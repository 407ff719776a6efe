// Package cache holds the portal's single query cache: the "all students"
// roster. Staleness is event-driven only; there is no TTL.
package cache

import (
	"context"
	"sort"
	"sync"

	"fee-portal/models"
)

// FetchFunc loads the roster from the data service.
type FetchFunc func(ctx context.Context) ([]models.Student, error)

// Roster caches the last successful roster fetch. Reads serve the cached
// value until Invalidate marks it stale; the next read then re-issues the
// underlying query. Readers already holding a stale slice are not
// corrected - convergence is eventual, not snapshot-isolated.
type Roster struct {
	fetch FetchFunc

	mu       sync.Mutex
	students []models.Student
	valid    bool
}

// NewRoster builds a roster cache over fetch.
func NewRoster(fetch FetchFunc) *Roster {
	return &Roster{fetch: fetch}
}

// Students returns the roster sorted by name ascending, re-fetching when
// the entry is stale. A failed fetch leaves the entry stale and returns
// the error; the previous value is not served.
func (c *Roster) Students(ctx context.Context) ([]models.Student, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		students, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(students, func(i, j int) bool {
			return students[i].Name < students[j].Name
		})
		c.students = students
		c.valid = true
	}

	out := make([]models.Student, len(c.students))
	copy(out, c.students)
	return out, nil
}

// Invalidate marks the entry stale so the next read re-fetches.
func (c *Roster) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
