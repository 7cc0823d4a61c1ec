package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func openTest(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func snapshot(version int) models.GameState {
	return models.GameState{
		ID:      "g1",
		Status:  models.StatusRunning,
		Version: version,
		Players: []models.PlayerState{{ID: "p1", Name: "Ann", Cash: 1500}},
		ChanceDeck: []models.Card{
			{ID: "c1", Description: "dividend", Effect: models.Money{Amount: 50}},
		},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, snapshot(1)); !errors.Is(err, ErrGameExists) {
		t.Fatalf("second create: %v", err)
	}

	next := snapshot(2)
	next.Players[0].Cash = 1450
	logs := []models.LogEntry{{Type: "jail_paid", ActorID: "p1", Payload: map[string]interface{}{"amount": 50.0}}}
	if err := s.Save(ctx, next, logs); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 || got.Players[0].Cash != 1450 {
		t.Fatalf("loaded %+v", got)
	}
	if _, ok := got.ChanceDeck[0].Effect.(models.Money); !ok {
		t.Fatalf("card effect = %T", got.ChanceDeck[0].Effect)
	}

	stored, err := s.Logs(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Type != "jail_paid" {
		t.Fatalf("logs = %+v", stored)
	}
}

func TestSQLiteVersionConflict(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, snapshot(2), nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, snapshot(2), nil); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale save: %v", err)
	}
	missing := snapshot(2)
	missing.ID = "nope"
	if err := s.Save(ctx, missing, nil); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing save: %v", err)
	}
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "g1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("load after delete: %v", err)
	}
}
