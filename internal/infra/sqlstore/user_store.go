package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"timed-quiz-service/internal/domain"
)

// UserStore persists user records. Name uniqueness is enforced by the
// database, so two concurrent starts for the same name cannot both succeed.
type UserStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db, clock: time.Now}
}

func (s *UserStore) FindByName(ctx context.Context, firstName, lastName string) (domain.UserRecord, bool, error) {
	var row UserRow
	err := s.db.NewSelect().
		Model(&row).
		Where("first_name = ?", firstName).
		Where("last_name = ?", lastName).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserRecord{}, false, nil
	}
	if err != nil {
		return domain.UserRecord{}, false, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), true, nil
}

func (s *UserStore) Create(ctx context.Context, rec domain.UserRecord) (string, error) {
	row := newUserRow(rec)
	row.ID = uuid.NewString()
	now := s.clock().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicateIdentity
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return row.ID, nil
}

// Update overwrites every column of the record except its creation time.
func (s *UserStore) Update(ctx context.Context, id string, rec domain.UserRecord) error {
	row := newUserRow(rec)
	row.ID = id
	row.UpdatedAt = s.clock().UTC()

	res, err := s.db.NewUpdate().
		Model(row).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, id string) (domain.UserRecord, error) {
	var row UserRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}
