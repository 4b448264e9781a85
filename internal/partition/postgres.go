package partition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/resilience"
)

// Schema creates the tables PostgresSource reads from.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS partitions (
		name    TEXT PRIMARY KEY,
		min_x   DOUBLE PRECISION NOT NULL,
		min_y   DOUBLE PRECISION NOT NULL,
		max_x   DOUBLE PRECISION NOT NULL,
		max_y   DOUBLE PRECISION NOT NULL,
		alive   BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS partition_sections (
		partition TEXT NOT NULL REFERENCES partitions(name) ON DELETE CASCADE,
		tag       TEXT NOT NULL,
		data      BYTEA NOT NULL,
		PRIMARY KEY (partition, tag)
	)`,
}

// PostgresSource serves partitions stored in PostgreSQL. Transient read
// failures are retried; rows that do not exist surface as
// ErrPartitionUnavailable or ErrTableMissing without retrying.
type PostgresSource struct {
	client *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

// NewPostgresSource creates a PostgresSource over an open client. m may be
// nil.
func NewPostgresSource(client *postgres.Client, m *metrics.Metrics) *PostgresSource {
	return &PostgresSource{
		client: client,
		retry:  storeRetryConfig(m),
		logger: slog.Default().With("component", "partition-postgres"),
	}
}

func storeRetryConfig(m *metrics.Metrics) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: 3,
		Retryable: func(err error) bool {
			return !apperrors.IsDegradable(err) && !errors.Is(err, context.Canceled)
		},
		OnRetry: func(name string, _ int, _ error) {
			m.IncPartitionRetry(name)
		},
	}
}

// EnsureSchema creates the partition tables when missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	return s.client.Migrate(ctx, Schema...)
}

// Put writes a partition and all of its sections, replacing previous rows.
func (s *PostgresSource) Put(ctx context.Context, id feature.PartitionID, snap *Snapshot) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO partitions (name, min_x, min_y, max_x, max_y, alive)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (name) DO UPDATE SET
				min_x = EXCLUDED.min_x, min_y = EXCLUDED.min_y,
				max_x = EXCLUDED.max_x, max_y = EXCLUDED.max_y, alive = TRUE`,
			string(id), snap.Bounds.Min.X, snap.Bounds.Min.Y, snap.Bounds.Max.X, snap.Bounds.Max.Y,
		)
		if err != nil {
			return fmt.Errorf("upserting partition %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM partition_sections WHERE partition = $1`, string(id)); err != nil {
			return fmt.Errorf("clearing sections of %s: %w", id, err)
		}
		for tag, data := range snap.Sections {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO partition_sections (partition, tag, data) VALUES ($1, $2, $3)`,
				string(id), string(tag), data,
			)
			if err != nil {
				return fmt.Errorf("writing section %s of %s: %w", tag, id, err)
			}
		}
		return nil
	})
}

// SetAlive toggles whether a partition can be acquired.
func (s *PostgresSource) SetAlive(ctx context.Context, id feature.PartitionID, alive bool) error {
	_, err := s.client.DB.ExecContext(ctx, `UPDATE partitions SET alive = $2 WHERE name = $1`, string(id), alive)
	if err != nil {
		return fmt.Errorf("updating partition %s: %w", id, err)
	}
	return nil
}

func (s *PostgresSource) Acquire(ctx context.Context, id feature.PartitionID) (Handle, error) {
	var bounds geo.Rect
	err := resilience.Retry(ctx, "acquire-partition", s.retry, func() error {
		row := s.client.DB.QueryRowContext(ctx,
			`SELECT min_x, min_y, max_x, max_y FROM partitions WHERE name = $1 AND alive`,
			string(id),
		)
		err := row.Scan(&bounds.Min.X, &bounds.Min.Y, &bounds.Max.X, &bounds.Max.Y)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("partition %s: %w", id, apperrors.ErrPartitionUnavailable)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &postgresHandle{id: id, bounds: bounds, source: s}, nil
}

type postgresHandle struct {
	id     feature.PartitionID
	bounds geo.Rect
	source *PostgresSource
}

func (h *postgresHandle) ID() feature.PartitionID { return h.id }
func (h *postgresHandle) Bounds() geo.Rect        { return h.bounds }
func (h *postgresHandle) Content() Content        { return h }
func (h *postgresHandle) Release()                {}

func (h *postgresHandle) Section(ctx context.Context, tag Tag) ([]byte, error) {
	var data []byte
	err := resilience.Retry(ctx, "load-section", h.source.retry, func() error {
		row := h.source.client.DB.QueryRowContext(ctx,
			`SELECT data FROM partition_sections WHERE partition = $1 AND tag = $2`,
			string(h.id), string(tag),
		)
		err := row.Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("partition %s section %s: %w", h.id, tag, apperrors.ErrTableMissing)
		}
		return err
	})
	if err != nil {
		if !apperrors.IsDegradable(err) {
			h.source.logger.Error("section load failed", "partition", h.id, "tag", tag, "error", err)
		}
		return nil, err
	}
	return data, nil
}
