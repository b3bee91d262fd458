package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/repository"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/logger"
)

// MatchStore 매치 저장소 계약. 유일한 공유 가변 자원이며 원자성의 최종 결정자다.
// AddMember는 같은 매치에 대한 동시 호출에 대해 원자적이어야 하고,
// 이미 멤버인 사용자의 재시도는 no-op 성공으로 처리해야 한다.
type MatchStore interface {
	Create(ctx context.Context, activityType string, maxUsers int, firstMember string) (*models.Match, error)
	FindByID(ctx context.Context, id string) (*models.Match, error)
	ListOpen(ctx context.Context, activityType string) ([]*models.Match, error)
	AddMember(ctx context.Context, matchID, userID string) (*models.Match, error)
	RemoveMember(ctx context.Context, matchID, userID string) (*models.Match, error)
	FindActiveByMember(ctx context.Context, activityType, userID string) (*models.Match, error)
}

type OutcomeKind string

const (
	OutcomeJoined  OutcomeKind = "joined"
	OutcomeCreated OutcomeKind = "created"
)

// MatchOutcome 매칭 결과. 실패는 sentinel 에러로 반환된다.
type MatchOutcome struct {
	Kind  OutcomeKind
	Match *models.Match
}

// MatchRequest 매칭 요청 입력
type MatchRequest struct {
	UserID       string
	ActivityType string
	MaxUsers     int
	MatchID      string // 명시적 대상 매치 (선택)
}

// MatchService 매칭 엔진. 호출 간 상태를 일절 보유하지 않으며
// 모든 호출은 독립적으로 재시도 가능하다.
type MatchService struct {
	store      MatchStore
	activities map[string]struct{}
	timeout    time.Duration
}

func NewMatchService(store MatchStore, activityTypes []string, timeout time.Duration) *MatchService {
	activities := make(map[string]struct{}, len(activityTypes))
	for _, activity := range activityTypes {
		activities[activity] = struct{}{}
	}

	return &MatchService{
		store:      store,
		activities: activities,
		timeout:    timeout,
	}
}

// FindOrCreateMatch 호환되는 OPEN 매치에 참가시키거나 새 매치를 생성한다.
//
//  1. matchId가 지정되면 해당 매치를 시도하고, 경합으로 가득 찬 경우에만
//     일반 탐색으로 전환한다 (하드 실패 대신 우아한 강등).
//  2. 생성순(오래된 것 먼저)으로 후보를 훑으며 참가를 시도한다.
//     경합으로 거부된 후보는 건너뛴다.
//  3. 후보가 소진되면 새 매치를 만든다.
//
// 모든 요청은 Joined, Created 또는 정의된 실패 중 정확히 하나로 끝난다.
func (s *MatchService) FindOrCreateMatch(ctx context.Context, req MatchRequest) (*MatchOutcome, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 같은 종목의 OPEN/FULL 매치에 이미 참여 중이면 거부 (중복 제출 방어)
	active, err := s.store.FindActiveByMember(ctx, req.ActivityType, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active match: %w", err)
	}
	if active != nil {
		return nil, ErrAlreadyMatched
	}

	if req.MatchID != "" {
		outcome, err := s.joinTarget(ctx, req)
		if err != nil || outcome != nil {
			return outcome, err
		}
		// 대상 매치가 경합으로 가득 참 — matchId 없는 요청처럼 계속 진행
	}

	candidates, err := s.store.ListOpen(ctx, req.ActivityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}

	for _, candidate := range candidates {
		if !IsCompatible(candidate, req) {
			continue
		}

		joined, err := s.store.AddMember(ctx, candidate.ID, req.UserID)
		if err == nil {
			logger.Info("User joined match",
				"userId", req.UserID,
				"matchId", joined.ID,
				"activityType", joined.ActivityType,
				"members", len(joined.Members),
				"status", joined.Status,
			)
			return &MatchOutcome{Kind: OutcomeJoined, Match: joined}, nil
		}

		// 다른 요청이 먼저 채웠거나 매치가 사라짐 — 다음 후보로
		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
			continue
		}

		return nil, fmt.Errorf("failed to join match: %w", err)
	}

	created, err := s.store.Create(ctx, req.ActivityType, req.MaxUsers, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCapacity) {
			return nil, ErrInvalidCapacity
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	logger.Info("Match created",
		"userId", req.UserID,
		"matchId", created.ID,
		"activityType", created.ActivityType,
		"maxUsers", created.MaxUsers,
	)

	return &MatchOutcome{Kind: OutcomeCreated, Match: created}, nil
}

// joinTarget 명시적 matchId 대상 참가 시도.
// (nil, nil)은 경합으로 인한 일반 탐색 전환을 뜻한다.
func (s *MatchService) joinTarget(ctx context.Context, req MatchRequest) (*MatchOutcome, error) {
	target, err := s.store.FindByID(ctx, req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find target match: %w", err)
	}
	if target == nil {
		return nil, ErrMatchNotFound
	}
	if !IsCompatible(target, req) {
		return nil, ErrIncompatibleMatch
	}

	joined, err := s.store.AddMember(ctx, target.ID, req.UserID)
	if err == nil {
		logger.Info("User joined requested match",
			"userId", req.UserID,
			"matchId", joined.ID,
			"status", joined.Status,
		)
		return &MatchOutcome{Kind: OutcomeJoined, Match: joined}, nil
	}

	if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}

	return nil, fmt.Errorf("failed to join target match: %w", err)
}

// LeaveMatch 매치 이탈. FULL 매치는 OPEN으로 돌아가고
// 마지막 멤버가 나가면 매치가 닫힌다.
func (s *MatchService) LeaveMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if matchID == "" {
		return nil, ErrMissingField
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	match, err := s.store.RemoveMember(ctx, matchID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, repository.ErrNotMember):
			return nil, ErrNotMember
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrMatchClosed
		}
		return nil, fmt.Errorf("failed to leave match: %w", err)
	}

	logger.Info("User left match",
		"userId", userID,
		"matchId", matchID,
		"status", match.Status,
	)

	return match, nil
}

// ListOpen 종목별 OPEN 매치 목록 (읽기 전용 경로)
func (s *MatchService) ListOpen(ctx context.Context, activityType string) ([]*models.Match, error) {
	if activityType == "" {
		return nil, ErrMissingField
	}
	if _, ok := s.activities[activityType]; !ok {
		return nil, ErrUnknownActivity
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.store.ListOpen(ctx, activityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}

	return matches, nil
}

func (s *MatchService) validate(req MatchRequest) error {
	if req.UserID == "" {
		return ErrUnauthenticated
	}
	if req.ActivityType == "" {
		return ErrMissingField
	}
	if _, ok := s.activities[req.ActivityType]; !ok {
		return ErrUnknownActivity
	}
	// 1인 매치는 의미가 없다
	if req.MaxUsers < 2 {
		return ErrInvalidCapacity
	}
	return nil
}
