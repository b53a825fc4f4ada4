package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheGet returns the stored body for key if it exists and is younger
// than validity. Stale entries are evicted lazily on read.
func (s *Store) CacheGet(ctx context.Context, key string, validity time.Duration) ([]byte, bool, error) {
	var result []byte
	var insertedAt string
	err := s.exec.QueryRowContext(ctx,
		`SELECT result, inserted_at FROM cache WHERE key = ?`, key).
		Scan(&result, &insertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}

	inserted, err := parseTime(insertedAt)
	if err != nil {
		return nil, false, err
	}
	if validity > 0 && time.Since(inserted) > validity {
		if _, err := s.exec.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
			return nil, false, fmt.Errorf("cache evict %q: %w", key, err)
		}
		return nil, false, nil
	}
	return result, true, nil
}

// CachePut stores a response body under key. A concurrent insert for the
// same key wins silently; the second write is a no-op.
func (s *Store) CachePut(ctx context.Context, key string, result []byte) error {
	_, err := s.exec.ExecContext(ctx,
		`INSERT INTO cache (key, result, inserted_at) VALUES (?, ?, ?)
         ON CONFLICT (key) DO NOTHING`,
		key, result, fmtTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

// CacheSweep deletes every entry older than cutoff and reports how many
// rows were removed.
func (s *Store) CacheSweep(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`DELETE FROM cache WHERE inserted_at < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cache sweep: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
