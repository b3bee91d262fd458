package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/database"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 새 사용자 생성. 중복 ID는 ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, password_hash, name, rank, unit, gender, favorite_event, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, password_hash, name, rank, unit, gender, favorite_event, description, created_at, updated_at
	`

	created := &models.User{}
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.PasswordHash,
		user.Name,
		user.Rank,
		user.Unit,
		user.Gender,
		user.FavoriteEvent,
		user.Description,
	).Scan(
		&created.ID,
		&created.PasswordHash,
		&created.Name,
		&created.Rank,
		&created.Unit,
		&created.Gender,
		&created.FavoriteEvent,
		&created.Description,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		// unique_violation
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// FindByID ID로 사용자 찾기
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, password_hash, name, rank, unit, gender, favorite_event, description, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.Name,
		&user.Rank,
		&user.Unit,
		&user.Gender,
		&user.FavoriteEvent,
		&user.Description,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // 사용자 없음
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Exists ID 존재 여부 확인
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	return exists, nil
}
