package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notesaas/notehub/internal/domain/note"
	"github.com/notesaas/notehub/internal/observability"
)

// Every query here is scoped by tenant_id from verified claims; a note id
// guessed across the tenant boundary behaves exactly like a missing one.
type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func (r *NotesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *NotesRepo) Create(ctx context.Context, tenantID string, req note.CreateNoteRequest) (note.Note, error) {
	n := note.NewFromCreateRequest(tenantID, req)

	err := r.observe("notes.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO notes (id, title, content, tenant_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, n.Title, n.Content, n.TenantID, n.CreatedAt, n.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) ListByTenant(ctx context.Context, tenantID string) (notes []note.Note, err error) {
	var rows pgx.Rows

	err = r.observe("notes.list_by_tenant", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT id, title, content, tenant_id, created_at, updated_at
			 FROM notes
			 WHERE tenant_id = $1
			 ORDER BY updated_at DESC, id DESC`,
			tenantID,
		)
		return e
	})

	if err != nil {
		return
	}

	defer rows.Close()

	notes = make([]note.Note, 0)

	for rows.Next() {
		var n note.Note

		e := rows.Scan(&n.ID, &n.Title, &n.Content, &n.TenantID, &n.CreatedAt, &n.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		notes = append(notes, n)
	}

	err = rows.Err()
	return
}

func (r *NotesRepo) GetByID(ctx context.Context, tenantID, id string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, content, tenant_id, created_at, updated_at
			 FROM notes
			 WHERE id = $1 AND tenant_id = $2`,
			id, tenantID,
		).Scan(&n.ID, &n.Title, &n.Content, &n.TenantID, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) Update(ctx context.Context, tenantID, id string, req note.UpdateNoteRequest) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE notes
				SET title = $3,
						content = $4,
						updated_at = NOW()
			 WHERE id = $1 AND tenant_id = $2
			 RETURNING id, title, content, tenant_id, created_at, updated_at`,
			id, tenantID, req.Title, req.Content,
		).Scan(&n.ID, &n.Title, &n.Content, &n.TenantID, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, tenantID, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("notes.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`DELETE FROM notes WHERE id = $1 AND tenant_id = $2`,
			id, tenantID,
		)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}

func (r *NotesRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var total int

	err := r.observe("notes.count_by_tenant", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM notes WHERE tenant_id = $1`,
			tenantID,
		).Scan(&total)
	})

	return total, err
}
