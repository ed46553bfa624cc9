package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"todoc/internal/domain"
	"todoc/internal/port"
)

// Store is a read-only sqlite adapter over the application's kids, diary
// record, and community post tables. It implements both port.RecordStore
// and port.CommunityStore; writes happen elsewhere in the application.
type Store struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type kidRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	BirthDate time.Time `db:"birth_date"`
	Gender    string    `db:"gender"`
}

// recordRow flattens a record with its type-specific detail via left joins.
type recordRow struct {
	ID         int64          `db:"id"`
	KidID      int64          `db:"kid_id"`
	RecordType string         `db:"record_type"`
	Title      sql.NullString `db:"title"`
	Memo       sql.NullString `db:"memo"`
	CreatedAt  time.Time      `db:"created_at"`

	HeightCM sql.NullFloat64 `db:"height_cm"`
	WeightKG sql.NullFloat64 `db:"weight_kg"`

	Symptom     sql.NullString  `db:"symptom"`
	Temperature sql.NullFloat64 `db:"temperature"`

	SleepStart   sql.NullTime   `db:"start_datetime"`
	SleepEnd     sql.NullTime   `db:"end_datetime"`
	SleepQuality sql.NullString `db:"sleep_quality"`

	MealType   sql.NullString `db:"meal_type"`
	MealDetail sql.NullString `db:"meal_detail"`

	StoolAmount    sql.NullString `db:"amount"`
	StoolCondition sql.NullString `db:"condition"`
	StoolColor     sql.NullString `db:"color"`
}

const recordSelect = `
SELECT r.id, r.kid_id, r.record_type, r.title, r.memo, r.created_at,
       g.height_cm, g.weight_kg,
       h.symptom, h.temperature,
       s.start_datetime, s.end_datetime, s.sleep_quality,
       m.meal_type, m.meal_detail,
       st.amount, st.condition, st.color
FROM records r
LEFT JOIN growth_records g ON g.record_id = r.id
LEFT JOIN health_records h ON h.record_id = r.id
LEFT JOIN sleep_records s ON s.record_id = r.id
LEFT JOIN meal_records m ON m.record_id = r.id
LEFT JOIN stool_records st ON st.record_id = r.id
WHERE r.kid_id = ?`

// GetKid fetches a child profile by id.
func (s *Store) GetKid(ctx context.Context, kidID int64) (domain.Kid, error) {
	var row kidRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, birth_date, gender FROM kids WHERE id = ?`, kidID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Kid{}, port.ErrNotFound
	}
	if err != nil {
		return domain.Kid{}, fmt.Errorf("failed to fetch kid %d: %w", kidID, err)
	}
	return domain.Kid{
		ID:        row.ID,
		Name:      row.Name,
		BirthDate: row.BirthDate,
		Gender:    row.Gender,
	}, nil
}

// LatestRecord fetches the most recent record of any type for the child.
func (s *Store) LatestRecord(ctx context.Context, kidID int64) (domain.Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, recordSelect+` ORDER BY r.created_at DESC LIMIT 1`, kidID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, port.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to fetch latest record for kid %d: %w", kidID, err)
	}
	return row.toDomain(), nil
}

// RecentRecords fetches up to limit records created at or after since,
// newest first.
func (s *Store) RecentRecords(ctx context.Context, kidID int64, since time.Time, limit int) ([]domain.Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows,
		recordSelect+` AND r.created_at >= ? ORDER BY r.created_at DESC LIMIT ?`,
		kidID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent records for kid %d: %w", kidID, err)
	}

	out := make([]domain.Record, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

type postRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	Category   string    `db:"category"`
	LikesCount int       `db:"likes_count"`
	CreatedAt  time.Time `db:"created_at"`
}

// SearchPosts returns posts in the category matching the query on title or
// body, newest first. An empty query matches everything in the category.
func (s *Store) SearchPosts(ctx context.Context, category domain.CommunityCategory, query string, limit int) ([]domain.Post, error) {
	q := `SELECT id, title, content, category, likes_count, created_at
	      FROM posts WHERE category = ?`
	args := []interface{}{string(category)}

	if query != "" {
		q += ` AND (title LIKE ? OR content LIKE ?)`
		like := "%" + query + "%"
		args = append(args, like, like)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	out := make([]domain.Post, len(rows))
	for i, row := range rows {
		out[i] = domain.Post{
			ID:         row.ID,
			Title:      row.Title,
			Content:    row.Content,
			Category:   domain.CommunityCategory(row.Category),
			LikesCount: row.LikesCount,
			CreatedAt:  row.CreatedAt,
		}
	}
	return out, nil
}

// toDomain builds the tagged union: only the detail matching the record
// type is attached, even if stray join rows exist.
func (r recordRow) toDomain() domain.Record {
	rec := domain.Record{
		ID:        r.ID,
		KidID:     r.KidID,
		Type:      domain.RecordType(r.RecordType),
		Title:     r.Title.String,
		Memo:      r.Memo.String,
		CreatedAt: r.CreatedAt,
	}

	switch rec.Type {
	case domain.RecordGrowth:
		if r.HeightCM.Valid || r.WeightKG.Valid {
			rec.Growth = &domain.GrowthDetail{
				HeightCM: r.HeightCM.Float64,
				WeightKG: r.WeightKG.Float64,
			}
		}
	case domain.RecordHealth:
		if r.Symptom.Valid || r.Temperature.Valid {
			rec.Health = &domain.HealthDetail{
				Symptom:     domain.Symptom(r.Symptom.String),
				Temperature: r.Temperature.Float64,
			}
		}
	case domain.RecordSleep:
		if r.SleepStart.Valid && r.SleepEnd.Valid {
			rec.Sleep = &domain.SleepDetail{
				Start:   r.SleepStart.Time,
				End:     r.SleepEnd.Time,
				Quality: domain.SleepQuality(r.SleepQuality.String),
			}
		}
	case domain.RecordMeal:
		if r.MealType.Valid {
			rec.Meal = &domain.MealDetail{
				Type:   domain.MealType(r.MealType.String),
				Detail: r.MealDetail.String,
			}
		}
	case domain.RecordStool:
		if r.StoolAmount.Valid {
			rec.Stool = &domain.StoolDetail{
				Amount:    domain.StoolAmount(r.StoolAmount.String),
				Condition: domain.StoolCondition(r.StoolCondition.String),
				Color:     domain.StoolColor(r.StoolColor.String),
			}
		}
	}

	return rec
}
