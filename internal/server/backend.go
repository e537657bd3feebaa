package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/store"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/transport"
)

// ValidationError lists why a payload was refused.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// Unwrap lets callers match the refusal with transport.ErrRejected.
func (e *ValidationError) Unwrap() error { return transport.ErrRejected }

func validationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	reasons := make([]string, 0, len(errs))
	for _, err := range errs {
		reasons = append(reasons, err.Error())
	}
	return &ValidationError{Reasons: reasons}
}

// Backend applies the tour contract over the SQLite store. It serves both the
// HTTP API and offline sessions, which use it directly as their transport and
// catalog source.
type Backend struct {
	store   *store.Store
	catalog catalog.Source
}

var (
	_ transport.Transport = (*Backend)(nil)
	_ catalog.Source      = (*Backend)(nil)
)

// NewBackend wires the store and the catalog used to validate references.
func NewBackend(st *store.Store, src catalog.Source) *Backend {
	return &Backend{store: st, catalog: src}
}

// Load returns one catalog collection.
func (b *Backend) Load(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	if b.catalog == nil {
		return nil, nil
	}
	return b.catalog.Load(ctx, kind)
}

// Catalog loads every collection into a fresh catalog.
func (b *Backend) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	c := catalog.New()
	if b.catalog == nil {
		return c, nil
	}
	if err := catalog.LoadAll(ctx, b.catalog, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *Backend) Create(ctx context.Context, payload tour.CreatePayload) (tour.Persisted, error) {
	errs := tour.ValidateCreate(payload)
	c, err := b.Catalog(ctx)
	if err != nil {
		return tour.Persisted{}, fmt.Errorf("server: create tour: %w", err)
	}
	errs = append(errs, tour.ValidateReferences(c, payload.TourGuide, payload.DailyItineraries)...)
	if err := validationError(errs); err != nil {
		return tour.Persisted{}, err
	}
	saved, err := b.store.Insert(ctx, store.Tour{
		Name:            strings.TrimSpace(payload.Name),
		Description:     strings.TrimSpace(payload.Description),
		Duration:        payload.Duration,
		Price:           payload.Price,
		MaxParticipants: payload.MaxParticipants,
		Difficulty:      payload.Difficulty,
		MealOptions:     payload.MealOptions,
		GuideID:         strings.TrimSpace(payload.TourGuide),
		Days:            payload.DailyItineraries,
	})
	if err != nil {
		return tour.Persisted{}, fmt.Errorf("server: create tour: %w", err)
	}
	return saved.Persisted(), nil
}

// Update overwrites the stored tour; the last write wins. Omitted guide or
// itinerary leave the stored values in place.
func (b *Backend) Update(ctx context.Context, id string, payload tour.UpdatePayload) (tour.Persisted, error) {
	errs := tour.ValidateUpdate(payload)
	c, err := b.Catalog(ctx)
	if err != nil {
		return tour.Persisted{}, fmt.Errorf("server: update tour %s: %w", id, err)
	}
	errs = append(errs, tour.ValidateReferences(c, payload.TourGuide, payload.DailyItineraries)...)
	if err := validationError(errs); err != nil {
		return tour.Persisted{}, err
	}
	saved, err := b.store.Update(ctx, store.Tour{
		ID:              id,
		Name:            strings.TrimSpace(payload.Name),
		Description:     strings.TrimSpace(payload.Description),
		Duration:        payload.Duration,
		Price:           payload.Price,
		MaxParticipants: payload.MaxParticipants,
		Difficulty:      payload.Difficulty,
		MealOptions:     payload.MealOptions,
		GuideID:         strings.TrimSpace(payload.TourGuide),
		Days:            payload.DailyItineraries,
	}, payload.DailyItineraries != nil)
	if err != nil {
		return tour.Persisted{}, storeError("update tour", id, err)
	}
	return saved.Persisted(), nil
}

func (b *Backend) Get(ctx context.Context, id string) (tour.Persisted, error) {
	saved, err := b.store.Get(ctx, id)
	if err != nil {
		return tour.Persisted{}, storeError("get tour", id, err)
	}
	return saved.Persisted(), nil
}

func (b *Backend) List(ctx context.Context) ([]tour.Persisted, error) {
	tours, err := b.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("server: list tours: %w", err)
	}
	out := make([]tour.Persisted, 0, len(tours))
	for _, t := range tours {
		out = append(out, t.Persisted())
	}
	return out, nil
}

func storeError(action, id string, err error) error {
	if errors.Is(err, store.ErrTourNotFound) {
		return fmt.Errorf("server: %s %s: %w", action, id, transport.ErrNotFound)
	}
	return fmt.Errorf("server: %s %s: %w", action, id, err)
}
