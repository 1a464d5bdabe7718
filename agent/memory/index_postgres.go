package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type pgVectorRow struct {
	bun.BaseModel `bun:"table:memory_vectors,alias:mv"`

	ID         string    `bun:"id,pk"`
	Collection string    `bun:"collection,notnull"`
	Document   string    `bun:"document,notnull"`
	Embedding  []float32 `bun:"embedding,array"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PostgresIndex stores vectors as real[] columns through bun. Ranking
// happens in process so no database extension is required.
type PostgresIndex struct {
	db *bun.DB
}

func OpenPostgresIndex(ctx context.Context, dsn string) (*PostgresIndex, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: ping postgres: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*pgVectorRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: create vector table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*pgVectorRow)(nil)).
		Index("idx_memory_vectors_collection").
		IfNotExists().
		Column("collection").
		Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: create vector index: %w", err)
	}
	return &PostgresIndex{db: db}, nil
}

func (p *PostgresIndex) Name() string { return BackendPostgres }

func (p *PostgresIndex) Add(ctx context.Context, collection string, entry IndexEntry) error {
	row := &pgVectorRow{
		ID:         entry.ID,
		Collection: collection,
		Document:   entry.Document,
		Embedding:  entry.Embedding,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := p.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("memory: insert vector %s: %w", entry.ID, err)
	}
	return nil
}

func (p *PostgresIndex) Delete(ctx context.Context, collection string, id string) error {
	_, err := p.db.NewDelete().
		Model((*pgVectorRow)(nil)).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("memory: delete vector %s: %w", id, err)
	}
	return nil
}

func (p *PostgresIndex) Query(ctx context.Context, collection string, vec []float32, n int) ([]IndexMatch, error) {
	var rows []pgVectorRow
	err := p.db.NewSelect().
		Model(&rows).
		Where("collection = ?", collection).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory: query vectors: %w", err)
	}
	candidates := make([]IndexMatch, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, IndexMatch{
			ID:       r.ID,
			Document: r.Document,
			Distance: squaredL2(vec, r.Embedding),
		})
	}
	return rankMatches(candidates, n), nil
}

func (p *PostgresIndex) Count(ctx context.Context, collection string) (int, error) {
	n, err := p.db.NewSelect().
		Model((*pgVectorRow)(nil)).
		Where("collection = ?", collection).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("memory: count vectors: %w", err)
	}
	return n, nil
}

func (p *PostgresIndex) Close() error {
	return p.db.Close()
}
