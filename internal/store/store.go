// Package store persists tours in SQLite for the reference backend.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/kingrea/tourdesk/internal/tour"
)

//go:embed schema.sql
var schema string

var (
	// ErrTourNotFound is returned when no tour has the requested id.
	ErrTourNotFound = errors.New("store: tour not found")
	// ErrTourExists is returned when inserting a tour whose id is taken.
	ErrTourExists = errors.New("store: tour already exists")
)

// Tour is one stored package. Day references are bare ids.
type Tour struct {
	ID              string
	Name            string
	Description     string
	Duration        int
	Price           float64
	MaxParticipants int
	Difficulty      string
	MealOptions     string
	GuideID         string
	Days            []tour.DayPayload
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Persisted converts t to the wire shape returned by the backend.
func (t Tour) Persisted() tour.Persisted {
	out := tour.Persisted{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		Duration:        tour.NumberOf(float64(t.Duration)),
		Price:           tour.NumberOf(t.Price),
		MaxParticipants: tour.NumberOf(float64(t.MaxParticipants)),
		Difficulty:      t.Difficulty,
		MealOptions:     t.MealOptions,
	}
	if t.GuideID != "" {
		out.TourGuide = &tour.Ref{ID: t.GuideID}
	}
	for _, day := range t.Days {
		out.DailyItineraries = append(out.DailyItineraries, tour.DayPlan{
			Day:            tour.NumberOf(float64(day.Day)),
			Destinations:   refs(day.Destinations),
			Accommodations: refs(day.Accommodations),
		})
	}
	if !t.CreatedAt.IsZero() {
		created := t.CreatedAt
		out.CreatedAt = &created
	}
	if !t.UpdatedAt.IsZero() {
		updated := t.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func refs(ids []string) []tour.Ref {
	out := make([]tour.Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, tour.Ref{ID: id})
	}
	return out
}

// Store persists tours in SQLite. It is safe for concurrent use; concurrent
// updates to one tour are last write wins.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store: not configured")
	}
	return nil
}

// Insert stores a new tour. A blank id is replaced with a fresh UUID.
func (s *Store) Insert(ctx context.Context, t Tour) (Tour, error) {
	if err := s.ready(ctx); err != nil {
		return Tour{}, err
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	t.CreatedAt, t.UpdatedAt = now, now

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return Tour{}, fmt.Errorf("store: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tours (
		   id, name, description, duration, price, max_participants,
		   difficulty, meal_options, tour_guide, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.Duration, t.Price, t.MaxParticipants,
		t.Difficulty, t.MealOptions, t.GuideID, toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Tour{}, fmt.Errorf("%w: %s", ErrTourExists, t.ID)
		}
		return Tour{}, fmt.Errorf("store: insert tour: %w", err)
	}
	if err := writeDays(ctx, tx, t.ID, t.Days); err != nil {
		return Tour{}, err
	}
	if err := tx.Commit(); err != nil {
		return Tour{}, fmt.Errorf("store: commit insert: %w", err)
	}
	return t, nil
}

// Update overwrites the scalar fields of an existing tour. The stored guide
// is kept when t.GuideID is blank. When replaceDays is false the stored days
// and their duration are both kept.
func (s *Store) Update(ctx context.Context, t Tour, replaceDays bool) (Tour, error) {
	if err := s.ready(ctx); err != nil {
		return Tour{}, err
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return Tour{}, fmt.Errorf("store: tour id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return Tour{}, fmt.Errorf("store: begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE tours
		    SET name = ?, description = ?,
		        duration = CASE WHEN ? THEN ? ELSE duration END, price = ?,
		        max_participants = ?, difficulty = ?, meal_options = ?,
		        tour_guide = CASE WHEN ? = '' THEN tour_guide ELSE ? END,
		        updated_at = ?
		  WHERE id = ?`,
		t.Name, t.Description, replaceDays, t.Duration, t.Price,
		t.MaxParticipants, t.Difficulty, t.MealOptions,
		t.GuideID, t.GuideID,
		toMillis(s.now()),
		t.ID,
	)
	if err != nil {
		return Tour{}, fmt.Errorf("store: update tour: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Tour{}, fmt.Errorf("store: update tour: %w", err)
	} else if n == 0 {
		return Tour{}, fmt.Errorf("%w: %s", ErrTourNotFound, t.ID)
	}
	if replaceDays {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tour_days WHERE tour_id = ?`, t.ID); err != nil {
			return Tour{}, fmt.Errorf("store: clear days: %w", err)
		}
		if err := writeDays(ctx, tx, t.ID, t.Days); err != nil {
			return Tour{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Tour{}, fmt.Errorf("store: commit update: %w", err)
	}
	return s.Get(ctx, t.ID)
}

// Get loads one tour with its days.
func (s *Store) Get(ctx context.Context, id string) (Tour, error) {
	if err := s.ready(ctx); err != nil {
		return Tour{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Tour{}, fmt.Errorf("store: tour id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, description, duration, price, max_participants,
		        difficulty, meal_options, tour_guide, created_at, updated_at
		   FROM tours
		  WHERE id = ?`,
		id,
	)
	t, err := scanTour(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tour{}, fmt.Errorf("%w: %s", ErrTourNotFound, id)
		}
		return Tour{}, fmt.Errorf("store: get tour: %w", err)
	}
	days, err := s.days(ctx, id)
	if err != nil {
		return Tour{}, err
	}
	t.Days = days
	return t, nil
}

// List returns every tour, oldest first.
func (s *Store) List(ctx context.Context) ([]Tour, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, description, duration, price, max_participants,
		        difficulty, meal_options, tour_guide, created_at, updated_at
		   FROM tours
		  ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list tours: %w", err)
	}
	var out []Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan tour: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: list tours: %w", err)
	}
	rows.Close()

	for i := range out {
		days, err := s.days(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Days = days
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTour(row scanner) (Tour, error) {
	var (
		t                    Tour
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Duration, &t.Price, &t.MaxParticipants,
		&t.Difficulty, &t.MealOptions, &t.GuideID, &createdAt, &updatedAt,
	)
	if err != nil {
		return Tour{}, err
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (s *Store) days(ctx context.Context, id string) ([]tour.DayPayload, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT day, destinations, accommodations
		   FROM tour_days
		  WHERE tour_id = ?
		  ORDER BY day`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: load days: %w", err)
	}
	defer rows.Close()

	var out []tour.DayPayload
	for rows.Next() {
		var (
			day                  tour.DayPayload
			dests, accommodation string
		)
		if err := rows.Scan(&day.Day, &dests, &accommodation); err != nil {
			return nil, fmt.Errorf("store: scan day: %w", err)
		}
		if err := json.Unmarshal([]byte(dests), &day.Destinations); err != nil {
			return nil, fmt.Errorf("store: decode day %d destinations: %w", day.Day, err)
		}
		if err := json.Unmarshal([]byte(accommodation), &day.Accommodations); err != nil {
			return nil, fmt.Errorf("store: decode day %d accommodations: %w", day.Day, err)
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load days: %w", err)
	}
	return out, nil
}

func writeDays(ctx context.Context, tx *sql.Tx, id string, days []tour.DayPayload) error {
	for _, day := range days {
		dests, err := json.Marshal(nonNil(day.Destinations))
		if err != nil {
			return fmt.Errorf("store: encode day %d: %w", day.Day, err)
		}
		accommodations, err := json.Marshal(nonNil(day.Accommodations))
		if err != nil {
			return fmt.Errorf("store: encode day %d: %w", day.Day, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tour_days (tour_id, day, destinations, accommodations) VALUES (?, ?, ?, ?)`,
			id, day.Day, string(dests), string(accommodations),
		)
		if err != nil {
			return fmt.Errorf("store: insert day %d: %w", day.Day, err)
		}
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
