// Package ident hands out the integer IDs shared by all numbered entities.
// Each namespace ("Contest", "News", ...) owns an independent counter row in
// Postgres; IDs are unique and strictly increasing within a namespace but not
// dense. An ID consumed by a creation that later fails is never reissued.
package ident

import (
	"context"
	"database/sql"

	"judgeboard/internal/common"
	"judgeboard/internal/platform/metrics"
)

const (
	NamespaceContest = "Contest"
	NamespaceNews    = "News"
	NamespaceProblem = "Problem"
)

type Allocator interface {
	NextID(ctx context.Context, namespace string) (int64, error)
}

type pgAllocator struct {
	db    *sql.DB
	floor int64
}

func NewPgAllocator(db *sql.DB, floor int64) Allocator {
	return &pgAllocator{db: db, floor: floor}
}

// NextID increments the namespace counter and returns the new value. The
// upsert is a single statement, so two concurrent callers can never read the
// same value: read-then-write from the application side would lose updates.
// A namespace seen for the first time starts at floor+1.
func (a *pgAllocator) NextID(ctx context.Context, namespace string) (int64, error) {
	const query = `
        INSERT INTO id_sequences (namespace, value) VALUES ($1, $2 + 1)
        ON CONFLICT (namespace) DO UPDATE SET value = id_sequences.value + 1
        RETURNING value`

	var id int64
	if err := a.db.QueryRowContext(ctx, query, namespace, a.floor).Scan(&id); err != nil {
		return 0, common.Errorf("pgAllocator.NextID(%s): %v: %w", namespace, err, common.ErrAllocation)
	}
	metrics.IDAllocations.WithLabelValues(namespace).Inc()
	return id, nil
}
