package core

import (
	"context"
	"fmt"
	"time"

	"trade-ledger/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsService struct {
	pool *pgxpool.Pool
}

// NewSettingsService constructs a SettingsService backed by PostgreSQL.
func NewSettingsService(pool *pgxpool.Pool) SettingsService {
	return &settingsService{pool: pool}
}

type settingsRow struct {
	id        uuid.UUID
	value     map[string]any
	createdAt time.Time
	updatedAt time.Time
}

func (r settingsRow) normalize() Settings {
	st := NormalizeSettings(r.value)
	st.ID = r.id
	created, updated := r.createdAt, r.updatedAt
	st.CreatedAt = &created
	st.UpdatedAt = &updated
	return st
}

func (s *settingsService) GetSettings(ctx context.Context) (*Settings, error) {
	var row settingsRow
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		row, err = lockCurrentSettings(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	st := row.normalize()
	return &st, nil
}

func (s *settingsService) PatchSettings(ctx context.Context, body map[string]any) (*Settings, error) {
	patch := SanitizeSettingsPatch(body)
	return s.write(ctx, func(current map[string]any) map[string]any {
		return MergeSettings(current, patch)
	})
}

func (s *settingsService) ReplaceSettings(ctx context.Context, body map[string]any) (*Settings, error) {
	data := SanitizeSettingsPatch(body)
	return s.write(ctx, func(map[string]any) map[string]any {
		return MergeSettings(DefaultSettings(), data)
	})
}

// write computes the new document from the locked current one and stores it.
func (s *settingsService) write(ctx context.Context, next func(current map[string]any) map[string]any) (*Settings, error) {
	var row settingsRow
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := lockCurrentSettings(ctx, tx)
		if err != nil {
			return err
		}
		value := next(current.value)
		row = settingsRow{id: current.id, value: value, createdAt: current.createdAt}
		return tx.QueryRow(ctx, `
			UPDATE settings SET value = $1, updated_at = NOW()
			WHERE key = $2
			RETURNING updated_at`,
			value, SettingsKey,
		).Scan(&row.updatedAt)
	})
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("update settings: %w", err))
	}
	st := row.normalize()
	return &st, nil
}

func (s *settingsService) SettingsHistory(ctx context.Context, limit int) ([]Settings, error) {
	limit = SettingsHistoryLimit.Clamp(limit)
	rows, err := s.pool.Query(ctx, `
		SELECT id, value, created_at, updated_at
		FROM settings
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("settings history: %w", err)
	}
	stored, err := pgx.CollectRows(rows, scanSettingsRow)
	if err != nil {
		return nil, fmt.Errorf("scan settings history: %w", err)
	}
	out := make([]Settings, 0, len(stored))
	for _, r := range stored {
		out = append(out, r.normalize())
	}
	return out, nil
}

// lockCurrentSettings seeds the row from defaults if missing and returns it locked.
func lockCurrentSettings(ctx context.Context, tx pgx.Tx) (settingsRow, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`,
		SettingsKey, DefaultSettings(),
	); err != nil {
		return settingsRow{}, fmt.Errorf("seed settings: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, value, created_at, updated_at
		FROM settings
		WHERE key = $1
		FOR UPDATE`, SettingsKey)
	if err != nil {
		return settingsRow{}, fmt.Errorf("read settings: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, scanSettingsRow)
}

func scanSettingsRow(row pgx.CollectableRow) (settingsRow, error) {
	var r settingsRow
	err := row.Scan(&r.id, &r.value, &r.createdAt, &r.updatedAt)
	if r.value == nil {
		r.value = map[string]any{}
	}
	return r, err
}
