package game

import (
	"context"
	"fmt"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Store is the relational materialization of the replicated game state: one
// table per entity type, primary key as declared, region column indexed on
// every table. It is the write target of the pipeline and a read source for
// the HTTP list endpoints.
type Store struct {
	*postgres.Client
	Logger *zap.Logger
}

// NewStore wraps a connected client and ensures every entity table exists.
func NewStore(ctx context.Context, client *postgres.Client, logger *zap.Logger) (*Store, error) {
	s := &Store{Client: client, Logger: logger}
	if err := s.InitSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// InitSchema creates every replicated table and its region index.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, ddl := range models.AllDDL() {
		if err := s.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// executeBatch sends a pgx batch and surfaces the first per-statement error.
func executeBatch(ctx context.Context, exec postgres.Executor, batch *pgx.Batch) error {
	br := exec.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
