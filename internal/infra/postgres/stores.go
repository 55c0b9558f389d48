package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"suraksha-sathi/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           string     `bun:"id,pk"`
	Name         string     `bun:"name"`
	Email        string     `bun:"email"`
	PasswordHash string     `bun:"password_hash"`
	Role         string     `bun:"role"`
	LoginStreak  int        `bun:"login_streak"`
	LastLogin    *time.Time `bun:"last_login"`
	Badges       []string   `bun:"badges,array"`
}

func (r userRow) toDomain() domain.User {
	badges := r.Badges
	if badges == nil {
		badges = []string{}
	}
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		LoginStreak:  r.LoginStreak,
		LastLogin:    r.LastLogin,
		Badges:       badges,
	}
}

func rowFromUser(u domain.User) userRow {
	return userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		LoginStreak:  u.LoginStreak,
		LastLogin:    u.LastLogin,
		Badges:       u.Badges,
	}
}

// UserStore is the bun-backed implementation of app.UserStore.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storageErr("select user", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storageErr("select user by email", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) All(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, storageErr("select users", err)
	}
	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
	}
	return users, nil
}

func (s *UserStore) Save(ctx context.Context, user domain.User) error {
	row := rowFromUser(user)
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("email = EXCLUDED.email").
		Set("password_hash = EXCLUDED.password_hash").
		Set("role = EXCLUDED.role").
		Set("login_streak = EXCLUDED.login_streak").
		Set("last_login = EXCLUDED.last_login").
		Set("badges = EXCLUDED.badges").
		Exec(ctx)
	if err != nil {
		return storageErr("upsert user", err)
	}
	return nil
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id"`
	ModuleID  string    `bun:"module_id"`
	Score     int       `bun:"score"`
	Timestamp time.Time `bun:"recorded_at"`
}

// ProgressStore is the bun-backed append-only quiz-attempt log. Each append
// is a single insert, atomic per record.
type ProgressStore struct {
	db *bun.DB
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) Append(ctx context.Context, attempt domain.QuizAttempt) error {
	row := attemptRow{
		ID:        attempt.ID,
		UserID:    attempt.UserID,
		ModuleID:  attempt.ModuleID,
		Score:     attempt.Score,
		Timestamp: attempt.Timestamp,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storageErr("insert attempt", err)
	}
	return nil
}

func (s *ProgressStore) TotalScore(ctx context.Context, userID string) (int, error) {
	var total sql.NullInt64
	err := s.db.NewSelect().Model((*attemptRow)(nil)).
		ColumnExpr("SUM(score)").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, storageErr("sum attempts", err)
	}
	return int(total.Int64), nil
}

func (s *ProgressStore) All(ctx context.Context) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	if err := s.db.NewSelect().Model(&rows).Order("recorded_at ASC").Scan(ctx); err != nil {
		return nil, storageErr("select attempts", err)
	}
	attempts := make([]domain.QuizAttempt, len(rows))
	for i, row := range rows {
		attempts[i] = domain.QuizAttempt{
			ID:        row.ID,
			UserID:    row.UserID,
			ModuleID:  row.ModuleID,
			Score:     row.Score,
			Timestamp: row.Timestamp,
		}
	}
	return attempts, nil
}

func (s *ProgressStore) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*attemptRow)(nil)).Count(ctx)
	if err != nil {
		return 0, storageErr("count attempts", err)
	}
	return count, nil
}

type drillRow struct {
	bun.BaseModel `bun:"table:drill_participation"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id"`
	DrillID   string    `bun:"drill_id"`
	Timestamp time.Time `bun:"recorded_at"`
}

// DrillLog is the bun-backed append-only drill-participation log.
type DrillLog struct {
	db *bun.DB
}

func NewDrillLog(db *bun.DB) *DrillLog {
	return &DrillLog{db: db}
}

func (s *DrillLog) Append(ctx context.Context, record domain.DrillRecord) error {
	row := drillRow{
		ID:        record.ID,
		UserID:    record.UserID,
		DrillID:   record.DrillID,
		Timestamp: record.Timestamp,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storageErr("insert drill record", err)
	}
	return nil
}

func (s *DrillLog) ByUser(ctx context.Context, userID string) ([]domain.DrillRecord, error) {
	var rows []drillRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("recorded_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("select drill records", err)
	}
	return drillRecords(rows), nil
}

func (s *DrillLog) All(ctx context.Context) ([]domain.DrillRecord, error) {
	var rows []drillRow
	if err := s.db.NewSelect().Model(&rows).Order("recorded_at ASC").Scan(ctx); err != nil {
		return nil, storageErr("select drill records", err)
	}
	return drillRecords(rows), nil
}

func (s *DrillLog) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*drillRow)(nil)).Count(ctx)
	if err != nil {
		return 0, storageErr("count drill records", err)
	}
	return count, nil
}

func drillRecords(rows []drillRow) []domain.DrillRecord {
	records := make([]domain.DrillRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.DrillRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			DrillID:   row.DrillID,
			Timestamp: row.Timestamp,
		}
	}
	return records
}

type alertRow struct {
	bun.BaseModel `bun:"table:alerts"`

	ID      string `bun:"id,pk"`
	Region  string `bun:"region"`
	Level   string `bun:"level"`
	Message string `bun:"message"`
	Time    int64  `bun:"time"`
}

// AlertStore is the bun-backed alert log.
type AlertStore struct {
	db *bun.DB
}

func NewAlertStore(db *bun.DB) *AlertStore {
	return &AlertStore{db: db}
}

func (s *AlertStore) Append(ctx context.Context, alert domain.Alert) error {
	row := alertRow{
		ID:      alert.ID,
		Region:  alert.Region,
		Level:   alert.Level,
		Message: alert.Message,
		Time:    alert.Time,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storageErr("insert alert", err)
	}
	return nil
}

func (s *AlertStore) All(ctx context.Context) ([]domain.Alert, error) {
	var rows []alertRow
	if err := s.db.NewSelect().Model(&rows).Order("time DESC").Scan(ctx); err != nil {
		return nil, storageErr("select alerts", err)
	}
	alerts := make([]domain.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = domain.Alert{
			ID:      row.ID,
			Region:  row.Region,
			Level:   row.Level,
			Message: row.Message,
			Time:    row.Time,
		}
	}
	return alerts, nil
}

func (s *AlertStore) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*alertRow)(nil)).Count(ctx)
	if err != nil {
		return 0, storageErr("count alerts", err)
	}
	return count, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
