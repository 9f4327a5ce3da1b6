package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"github.com/yangyang7755/activityhub/internal/domain/profile"
	_ "modernc.org/sqlite"
)

const currentProfileKey = "current"

// Open connects to the local snapshot database. The path may be a file path
// or ":memory:" in tests.
func Open(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot db path is required")
	}

	db, err := otelsqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db %s: %w", path, err)
	}

	// One writer at a time keeps modernc's file locking happy.
	db.SetMaxOpenConns(1)

	return db, nil
}

// ProfileSnapshotStore persists the current-user profile across sessions in
// a single-row key/value table.
type ProfileSnapshotStore struct {
	db *sqlx.DB
}

func NewProfileSnapshotStore(db *sqlx.DB) *ProfileSnapshotStore {
	return &ProfileSnapshotStore{db: db}
}

// EnsureSchema creates the snapshot table when cmd/migration has not been
// run, so a fresh install works out of the box. The DDL matches migration
// 0001 and is idempotent.
func (s *ProfileSnapshotStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profile_snapshot (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}

	return nil
}

type snapshotRow struct {
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

type profileRecord struct {
	ID         string            `json:"id"`
	FullName   string            `json:"full_name"`
	Bio        string            `json:"bio"`
	Email      string            `json:"email"`
	AvatarURL  string            `json:"avatar_url"`
	ShowEmail  bool              `json:"show_email"`
	ShowBio    bool              `json:"show_bio"`
	ShowSkills bool              `json:"show_skills"`
	Skills     map[string]string `json:"skill_levels,omitempty"`
}

func (s *ProfileSnapshotStore) LoadCurrent(ctx context.Context) (profile.Profile, bool, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, `SELECT payload, updated_at FROM profile_snapshot WHERE key = $1`, currentProfileKey)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, false, nil
	}
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("load current profile: %w", err)
	}

	var record profileRecord
	if err := sonic.UnmarshalString(row.Payload, &record); err != nil {
		return profile.Profile{}, false, fmt.Errorf("decode current profile: %w", err)
	}

	return profile.Profile{
		ID:        record.ID,
		FullName:  record.FullName,
		Bio:       record.Bio,
		Email:     record.Email,
		AvatarURL: record.AvatarURL,
		Visibility: profile.Visibility{
			ShowEmail:  record.ShowEmail,
			ShowBio:    record.ShowBio,
			ShowSkills: record.ShowSkills,
		},
		SkillLevels: record.Skills,
	}, true, nil
}

func (s *ProfileSnapshotStore) SaveCurrent(ctx context.Context, p profile.Profile) error {
	record := profileRecord{
		ID:         p.ID,
		FullName:   p.FullName,
		Bio:        p.Bio,
		Email:      p.Email,
		AvatarURL:  p.AvatarURL,
		ShowEmail:  p.Visibility.ShowEmail,
		ShowBio:    p.Visibility.ShowBio,
		ShowSkills: p.Visibility.ShowSkills,
		Skills:     p.SkillLevels,
	}

	payload, err := sonic.MarshalString(record)
	if err != nil {
		return fmt.Errorf("encode current profile: %w", err)
	}

	const upsert = `
INSERT INTO profile_snapshot (key, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, upsert, currentProfileKey, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save current profile: %w", err)
	}

	return nil
}
