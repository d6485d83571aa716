package records

import (
	"context"
	"slices"
	"sync"
)

// Board is the record list a page displays. Deletes are optimistic: the
// record leaves the list before the store confirms and is put back at its
// old position if the store call fails.
type Board struct {
	client  *Client
	ownerID string

	mu      sync.Mutex
	records []Record
}

func NewBoard(c *Client, ownerID string) *Board {
	return &Board{client: c, ownerID: ownerID}
}

// Load replaces the displayed list with a fresh one. On error the list is
// left untouched.
func (b *Board) Load(ctx context.Context) error {
	recs, err := b.client.ListRecords(ctx, b.ownerID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.records = recs
	b.mu.Unlock()
	return nil
}

// Records returns a copy of the displayed list.
func (b *Board) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.records)
}

// Visible is the displayed list narrowed by query.
func (b *Board) Visible(query string) []Record {
	return Filter(b.Records(), query)
}

// Delete removes id in two phases: a tentative local removal, then the
// store call. A failed store call rolls the removal back.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	idx := slices.IndexFunc(b.records, func(r Record) bool { return r.ID == id })
	if idx < 0 {
		b.mu.Unlock()
		return ErrNotFound
	}
	removed := b.records[idx]
	b.records = slices.Delete(b.records, idx, idx+1)
	b.mu.Unlock()

	if err := b.client.DeleteRecord(ctx, id); err != nil {
		b.rollback(idx, removed)
		return err
	}
	return nil
}

func (b *Board) rollback(idx int, r Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.records, func(x Record) bool { return x.ID == r.ID }) {
		return
	}
	idx = min(idx, len(b.records))
	b.records = slices.Insert(b.records, idx, r)
}
