package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notesaas/notehub/internal/domain/note"
)

type NotesRepo struct {
	mu    sync.RWMutex
	items map[string]note.Note
}

func NewNotesRepo() *NotesRepo {
	return &NotesRepo{
		items: make(map[string]note.Note),
	}
}

func (r *NotesRepo) Create(ctx context.Context, tenantID string, req note.CreateNoteRequest) (note.Note, error) {
	n := note.NewFromCreateRequest(tenantID, req)

	r.mu.Lock()
	r.items[n.ID] = n
	r.mu.Unlock()

	return n, nil
}

func (r *NotesRepo) ListByTenant(ctx context.Context, tenantID string) ([]note.Note, error) {
	r.mu.RLock()

	out := make([]note.Note, 0)

	for _, n := range r.items {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	r.mu.RUnlock()

	// most recently updated first, same ordering as the postgres repo
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, tenantID, id string) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]

	if !ok || n.TenantID != tenantID {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}

func (r *NotesRepo) Update(ctx context.Context, tenantID, id string, req note.UpdateNoteRequest) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]

	if !ok || n.TenantID != tenantID {
		return note.Note{}, note.ErrNotFound
	}

	n.Title = req.Title
	n.Content = req.Content
	n.UpdatedAt = time.Now().UTC()
	r.items[id] = n

	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]

	if !ok || n.TenantID != tenantID {
		return note.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *NotesRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0

	for _, n := range r.items {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}
