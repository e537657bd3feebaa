package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/config"
	"github.com/kingrea/tourdesk/internal/store"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/transport"
)

func testSource() catalog.Source {
	file := catalog.File{
		Destinations:   []catalog.Entry{{ID: "d-1", Name: "Pokhara"}, {ID: "d-2", Name: "Ghandruk"}},
		Accommodations: []catalog.Entry{{ID: "h-1", Name: "Fishtail Lodge"}, {ID: "h-2", Name: "Guest House"}},
		Guides:         []catalog.Entry{{ID: "g-1", Name: "Pasang"}},
	}
	return catalog.SourceFunc(func(_ context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
		return file.Collection(kind)
	})
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tours.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewBackend(st, testSource())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validCreate() tour.CreatePayload {
	return tour.CreatePayload{
		Name:            "Annapurna Foothills",
		Description:     "Short lakeside trek",
		Duration:        2,
		Price:           480,
		MaxParticipants: 8,
		Difficulty:      "Moderate",
		MealOptions:     "Half Board",
		TourGuide:       "g-1",
		DailyItineraries: []tour.DayPayload{
			{Day: 1, Destinations: []string{"d-1"}, Accommodations: []string{"h-1"}},
			{Day: 2, Destinations: []string{"d-2"}, Accommodations: []string{"h-2"}},
		},
	}
}

func newAPI(t *testing.T) (*httptest.Server, *transport.HTTPClient) {
	t.Helper()
	srv := NewServer(Settings{}, newBackend(t), WithLogger(quietLogger()))
	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)
	return api, transport.NewHTTP(api.URL)
}

func TestCreateGetUpdateOverHTTP(t *testing.T) {
	_, client := newAPI(t)
	ctx := context.Background()

	created, err := client.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || len(created.DailyItineraries) != 2 {
		t.Fatalf("created = %+v", created)
	}

	got, err := client.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TourGuide == nil || got.TourGuide.ID != "g-1" {
		t.Fatalf("guide = %+v", got.TourGuide)
	}

	update := tour.UpdatePayload{
		Name: "Annapurna Foothills Trek", Duration: 2, Price: 520, MaxParticipants: 6,
		Difficulty: "Challenging", MealOptions: "Full Board",
	}
	updated, err := client.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Annapurna Foothills Trek" || len(updated.DailyItineraries) != 2 {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.TourGuide == nil || updated.TourGuide.ID != "g-1" {
		t.Fatalf("omitted guide was not kept: %+v", updated.TourGuide)
	}

	update.DailyItineraries = []tour.DayPayload{{Day: 1, Destinations: []string{"d-2"}, Accommodations: []string{}}}
	updated, err = client.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("update days: %v", err)
	}
	if len(updated.DailyItineraries) != 1 || updated.DailyItineraries[0].Destinations[0].ID != "d-2" {
		t.Fatalf("days = %+v", updated.DailyItineraries)
	}

	tours, err := client.List(ctx)
	if err != nil || len(tours) != 1 {
		t.Fatalf("list = %v, %v", tours, err)
	}
}

func TestCreateRejectsContractViolations(t *testing.T) {
	_, client := newAPI(t)
	payload := validCreate()
	payload.DailyItineraries = []tour.DayPayload{{Day: 1, Destinations: []string{}, Accommodations: []string{}}}
	payload.TourGuide = "g-404"

	_, err := client.Create(context.Background(), payload)
	if !errors.Is(err, transport.ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	var rej *transport.Rejection
	if !errors.As(err, &rej) || rej.Status != http.StatusUnprocessableEntity {
		t.Fatalf("rejection = %#v", rej)
	}
	joined := strings.Join(rej.Reasons, "\n")
	if !strings.Contains(joined, "destination") || !strings.Contains(joined, "g-404") {
		t.Fatalf("reasons = %v", rej.Reasons)
	}
}

func TestUnknownTour(t *testing.T) {
	_, client := newAPI(t)
	if _, err := client.Get(context.Background(), "missing"); !errors.Is(err, transport.ErrNotFound) {
		t.Fatalf("get err = %v", err)
	}
	upd := tour.UpdatePayload{Name: "x", Duration: 1, Price: 1, MaxParticipants: 1, Difficulty: "Easy", MealOptions: "Room Only"}
	if _, err := client.Update(context.Background(), "missing", upd); !errors.Is(err, transport.ErrNotFound) {
		t.Fatalf("update err = %v", err)
	}
}

func TestCatalogRoutes(t *testing.T) {
	_, client := newAPI(t)
	c := catalog.New()
	if err := catalog.LoadAll(context.Background(), client, c); err != nil {
		t.Fatalf("load all: %v", err)
	}
	if c.Len(catalog.KindDestination) != 2 || c.Label(catalog.KindGuide, "g-1") != "Pasang" {
		t.Fatalf("catalog = %d destinations, guide %q", c.Len(catalog.KindDestination), c.Label(catalog.KindGuide, "g-1"))
	}
}

func TestBadRequests(t *testing.T) {
	srv := NewServer(Settings{MaxBodyBytes: 64}, newBackend(t), WithLogger(quietLogger()))
	api := httptest.NewServer(srv.Handler())
	defer api.Close()

	resp, err := http.Post(api.URL+"/tours", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	big, _ := json.Marshal(validCreate())
	resp, err = http.Post(api.URL+"/tours", "application/json", bytes.NewReader(big))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/tours/x", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServerListenAndServe(t *testing.T) {
	srv := NewServer(Settings{Addr: "127.0.0.1:0"}, newBackend(t), WithLogger(quietLogger()))
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatalf("expected error serving before listen")
	}
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := srv.Listen(); err == nil {
		t.Fatalf("expected error on second listen")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	var health healthResponse
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(srv.BaseURL() + "/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		_ = json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if health.Status == string(StatusReady) || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if health.Status != string(StatusReady) {
		t.Fatalf("health = %+v", health)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
	if srv.Status() != StatusStopped {
		t.Fatalf("status = %s", srv.Status())
	}
	if srv.Addr() != "" {
		t.Fatalf("addr after serve = %q", srv.Addr())
	}
}

func TestRequestLogNamesRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	srv := NewServer(Settings{}, newBackend(t), WithLogger(logger))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tours/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	line := buf.String()
	for _, want := range []string{`route="GET /tours/{id}"`, "path=/tours/missing", "status=404"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log %q missing %s", line, want)
		}
	}
}

func TestSettingsFromConfig(t *testing.T) {
	t.Setenv("TOURDESK_SERVER_ADDR", "0.0.0.0:9001")
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	settings := SettingsFromConfig(cfg)
	if settings.Addr != "0.0.0.0:9001" {
		t.Fatalf("addr = %s", settings.Addr)
	}
	if settings.MaxBodyBytes != DefaultMaxBodyBytes || settings.ReadTimeout != DefaultReadTimeout {
		t.Fatalf("settings = %+v", settings)
	}
}
