package pipeline

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// StateStore persists the last completed phase between invocations.
type StateStore interface {
	LastPhase(ctx context.Context) (Phase, error)
	RecordPhase(ctx context.Context, phase Phase) error
}

// MetadataState keeps pipeline state in the warehouse metadata table.
type MetadataState struct {
	Store   *db.MetadataStore
	Dialect warehouse.Dialect
}

// NewMetadataState returns a StateStore backed by the metadata table on conn.
func NewMetadataState(conn db.TxBeginner, dialect warehouse.Dialect) *MetadataState {
	return &MetadataState{Store: db.NewMetadataStore(conn), Dialect: dialect}
}

// LastPhase returns the recorded phase, or None if nothing was recorded.
func (s *MetadataState) LastPhase(ctx context.Context) (Phase, error) {
	value, ok, err := s.Store.Get(ctx, db.KeyLastPhase)
	if err != nil {
		return None, err
	}
	if !ok {
		return None, nil
	}
	phase, err := ParsePhase(value)
	if err != nil {
		return None, fmt.Errorf("invalid recorded state: %w", err)
	}
	return phase, nil
}

// RecordPhase implements StateStore.
func (s *MetadataState) RecordPhase(ctx context.Context, phase Phase) error {
	return s.Store.RecordPhase(ctx, phase.String(), string(s.Dialect))
}
