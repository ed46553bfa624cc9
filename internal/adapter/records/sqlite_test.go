package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"todoc/internal/domain"
	"todoc/internal/port"
)

const testSchema = `
CREATE TABLE kids (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	birth_date DATETIME NOT NULL,
	gender TEXT NOT NULL
);
CREATE TABLE records (
	id INTEGER PRIMARY KEY,
	kid_id INTEGER NOT NULL,
	record_type TEXT NOT NULL,
	title TEXT,
	memo TEXT,
	created_at DATETIME NOT NULL
);
CREATE TABLE growth_records (record_id INTEGER PRIMARY KEY, height_cm REAL, weight_kg REAL);
CREATE TABLE health_records (record_id INTEGER PRIMARY KEY, symptom TEXT, temperature REAL);
CREATE TABLE sleep_records (record_id INTEGER PRIMARY KEY, start_datetime DATETIME, end_datetime DATETIME, sleep_quality TEXT);
CREATE TABLE meal_records (record_id INTEGER PRIMARY KEY, meal_type TEXT, meal_detail TEXT);
CREATE TABLE stool_records (record_id INTEGER PRIMARY KEY, amount TEXT, condition TEXT, color TEXT);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	category TEXT NOT NULL,
	likes_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return NewStore(db)
}

func seedKid(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO kids (id, name, birth_date, gender) VALUES (1, '민준', ?, 'male')`,
		time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
}

func seedRecord(t *testing.T, s *Store, id int64, typ string, createdAt time.Time) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO records (id, kid_id, record_type, title, memo, created_at) VALUES (?, 1, ?, '', '', ?)`,
		id, typ, createdAt)
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetKid(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)

	kid, err := s.GetKid(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kid.Name != "민준" {
		t.Errorf("expected name 민준, got %s", kid.Name)
	}
	if kid.Gender != "male" {
		t.Errorf("expected gender male, got %s", kid.Gender)
	}
}

func TestGetKid_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetKid(context.Background(), 42)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestRecord_Growth(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)
	seedRecord(t, s, 1, "growth", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	if _, err := s.db.Exec(
		`INSERT INTO growth_records (record_id, height_cm, weight_kg) VALUES (1, 65, 7)`); err != nil {
		t.Fatal(err)
	}

	rec, err := s.LatestRecord(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Type != domain.RecordGrowth {
		t.Fatalf("expected growth record, got %s", rec.Type)
	}
	if rec.Growth == nil {
		t.Fatal("expected growth detail")
	}
	if rec.Growth.HeightCM != 65 || rec.Growth.WeightKG != 7 {
		t.Errorf("expected 65/7, got %f/%f", rec.Growth.HeightCM, rec.Growth.WeightKG)
	}
}

func TestLatestRecord_PicksNewest(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)
	seedRecord(t, s, 1, "misc", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	seedRecord(t, s, 2, "meal", time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC))
	if _, err := s.db.Exec(
		`INSERT INTO meal_records (record_id, meal_type, meal_detail) VALUES (2, 'baby_food', 'pumpkin puree')`); err != nil {
		t.Fatal(err)
	}

	rec, err := s.LatestRecord(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != 2 {
		t.Errorf("expected record 2, got %d", rec.ID)
	}
	if rec.Meal == nil || rec.Meal.Detail != "pumpkin puree" {
		t.Errorf("expected meal detail, got %+v", rec.Meal)
	}
}

func TestLatestRecord_NoRows(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)

	_, err := s.LatestRecord(context.Background(), 1)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecentRecords_WindowAndOrder(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)
	seedRecord(t, s, 1, "misc", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	seedRecord(t, s, 2, "misc", time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	seedRecord(t, s, 3, "misc", time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC))

	since := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	recs, err := s.RecentRecords(context.Background(), 1, since, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records in window, got %d", len(recs))
	}
	if recs[0].ID != 3 || recs[1].ID != 2 {
		t.Errorf("expected newest first (3, 2), got (%d, %d)", recs[0].ID, recs[1].ID)
	}
}

func TestRecentRecords_Limit(t *testing.T) {
	s := newTestStore(t)
	seedKid(t, s)
	for i := int64(1); i <= 5; i++ {
		seedRecord(t, s, i, "misc", time.Date(2026, 8, int(i), 9, 0, 0, 0, time.UTC))
	}

	recs, err := s.RecentRecords(context.Background(), 1, time.Time{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Errorf("expected limit of 3, got %d", len(recs))
	}
}

func TestSearchPosts(t *testing.T) {
	s := newTestStore(t)
	posts := []struct {
		id       int64
		title    string
		content  string
		category string
		likes    int
		day      int
	}{
		{1, "Pumpkin soup", "easy weaning recipe", "recipe", 12, 1},
		{2, "Stroller for sale", "barely used", "marketplace", 3, 2},
		{3, "Iron-rich meals", "spinach and beef recipes for toddlers", "recipe", 30, 3},
		{4, "Sweet potato snacks", "pumpkin free alternative", "recipe", 5, 4},
	}
	for _, p := range posts {
		_, err := s.db.Exec(
			`INSERT INTO posts (id, title, content, category, likes_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.id, p.title, p.content, p.category, p.likes,
			time.Date(2026, 8, p.day, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.SearchPosts(context.Background(), domain.CategoryRecipe, "pumpkin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	// Newest first; the marketplace post never matches regardless of text.
	if got[0].ID != 4 || got[1].ID != 1 {
		t.Errorf("expected posts (4, 1), got (%d, %d)", got[0].ID, got[1].ID)
	}

	all, err := s.SearchPosts(context.Background(), domain.CategoryRecipe, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 recipe posts for empty query, got %d", len(all))
	}
}
