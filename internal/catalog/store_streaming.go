package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureStreamingService returns the service with the given name, creating
// it when missing.
func (s *Store) EnsureStreamingService(ctx context.Context, name string) (*StreamingService, error) {
	_, err := s.exec.ExecContext(ctx,
		`INSERT INTO streaming_services (name) VALUES (?)
         ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("insert streaming service: %w", err)
	}
	var svc StreamingService
	err = s.exec.QueryRowContext(ctx,
		`SELECT id, name FROM streaming_services WHERE name = ?`, name).
		Scan(&svc.ID, &svc.Name)
	if err != nil {
		return nil, fmt.Errorf("read streaming service %q: %w", name, err)
	}
	return &svc, nil
}

// ListStreamingServices returns every known service.
func (s *Store) ListStreamingServices(ctx context.Context) ([]StreamingService, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT id, name FROM streaming_services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list streaming services: %w", err)
	}
	defer rows.Close()
	var services []StreamingService
	for rows.Next() {
		var svc StreamingService
		if err := rows.Scan(&svc.ID, &svc.Name); err != nil {
			return nil, fmt.Errorf("scan streaming service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// UpsertStreamingServiceShow records a show's season availability on a
// service. On update the previous range rotates into the prev_* columns so
// a later pass can detect new seasons.
func (s *Store) UpsertStreamingServiceShow(ctx context.Context, showDataID, serviceID int64, firstSeason, lastSeason *int) error {
	now := fmtTime(time.Now().UTC())
	_, err := s.exec.ExecContext(ctx,
		`INSERT INTO streaming_service_shows (
            show_data_id, streaming_service_id,
            first_season_available, last_season_available,
            prev_first_season_available, prev_last_season_available,
            update_timestamp
        ) VALUES (?, ?, ?, ?, NULL, NULL, ?)
        ON CONFLICT (show_data_id, streaming_service_id) DO UPDATE SET
            prev_first_season_available = first_season_available,
            prev_last_season_available = last_season_available,
            first_season_available = excluded.first_season_available,
            last_season_available = excluded.last_season_available,
            update_timestamp = excluded.update_timestamp`,
		showDataID, serviceID, nullInt(firstSeason), nullInt(lastSeason), now)
	if err != nil {
		return fmt.Errorf("upsert streaming availability: %w", err)
	}
	return nil
}

// StreamingAvailability returns the availability row for one show on one
// service, or ErrNotFound.
func (s *Store) StreamingAvailability(ctx context.Context, showDataID, serviceID int64) (*StreamingServiceShow, error) {
	row := s.exec.QueryRowContext(ctx,
		`SELECT id, show_data_id, streaming_service_id,
                first_season_available, last_season_available,
                prev_first_season_available, prev_last_season_available,
                update_timestamp
         FROM streaming_service_shows
         WHERE show_data_id = ? AND streaming_service_id = ?`,
		showDataID, serviceID)
	entry, err := scanStreamingShow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return entry, err
}

// StreamingShowsForService lists every availability row on a service.
func (s *Store) StreamingShowsForService(ctx context.Context, serviceID int64) ([]StreamingServiceShow, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT id, show_data_id, streaming_service_id,
                first_season_available, last_season_available,
                prev_first_season_available, prev_last_season_available,
                update_timestamp
         FROM streaming_service_shows
         WHERE streaming_service_id = ?
         ORDER BY show_data_id`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list streaming shows: %w", err)
	}
	defer rows.Close()
	var entries []StreamingServiceShow
	for rows.Next() {
		entry, err := scanStreamingShow(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// DeleteStreamingShowsStale removes availability rows not refreshed since
// the cutoff, for services whose coverage is rebuilt on every sweep.
func (s *Store) DeleteStreamingShowsStale(ctx context.Context, serviceID int64, cutoff time.Time) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`DELETE FROM streaming_service_shows
         WHERE streaming_service_id = ? AND update_timestamp < ?`,
		serviceID, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete stale streaming shows: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanStreamingShow(scan func(dest ...any) error) (*StreamingServiceShow, error) {
	var entry StreamingServiceShow
	var first, last, prevFirst, prevLast sql.NullInt64
	var updated string
	err := scan(&entry.ID, &entry.ShowDataID, &entry.StreamingServiceID,
		&first, &last, &prevFirst, &prevLast, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("scan streaming show: %w", err)
	}
	entry.FirstSeasonAvailable = intPtr(first)
	entry.LastSeasonAvailable = intPtr(last)
	entry.PrevFirstSeason = intPtr(prevFirst)
	entry.PrevLastSeason = intPtr(prevLast)
	if entry.UpdateTimestamp, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &entry, nil
}
