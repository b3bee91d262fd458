package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/repository"
)

// RegisterInput 회원가입 입력. 원본 API와 동일하게 모든 항목이 필수다.
type RegisterInput struct {
	ID            string
	Password      string
	Name          string
	Rank          string
	Unit          string
	Gender        string
	FavoriteEvent string
	Description   string
}

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 새 사용자 등록
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	// 입력 검증 — 하나라도 빠지면 거부
	if input.ID == "" || input.Password == "" || input.Name == "" ||
		input.Rank == "" || input.Unit == "" || input.Gender == "" ||
		input.FavoriteEvent == "" || input.Description == "" {
		return nil, ErrMissingField
	}

	// 비밀번호 해싱
	passwordHash, err := models.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &models.User{
		ID:            input.ID,
		PasswordHash:  passwordHash,
		Name:          input.Name,
		Rank:          input.Rank,
		Unit:          input.Unit,
		Gender:        input.Gender,
		FavoriteEvent: input.FavoriteEvent,
		Description:   input.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login 로그인
func (s *UserService) Login(ctx context.Context, id, password string) (*models.User, error) {
	if id == "" || password == "" {
		return nil, ErrMissingField
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 비밀번호 확인
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Exists 기존 회원 ID 확인
func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrMissingField
	}

	exists, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	return exists, nil
}
