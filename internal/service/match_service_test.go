package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/repository"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test", "error")
	os.Exit(m.Run())
}

// memStore MatchStore 계약의 인메모리 구현.
// 저장소 계약(원자적 AddMember, no-op 멱등성)을 그대로 따른다.
type memStore struct {
	mu      sync.Mutex
	seq     int
	matches map[string]*models.Match
	order   []string // 생성 순서

	// 훅: 경합 시나리오 재현용 (nil이면 무시)
	beforeAddMember func(matchID string)
}

func newMemStore() *memStore {
	return &memStore{matches: make(map[string]*models.Match)}
}

func (s *memStore) Create(ctx context.Context, activityType string, maxUsers int, firstMember string) (*models.Match, error) {
	if maxUsers < 1 {
		return nil, repository.ErrInvalidCapacity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	match := &models.Match{
		ID:           fmt.Sprintf("match-%d", s.seq),
		ActivityType: activityType,
		MaxUsers:     maxUsers,
		Members:      []string{firstMember},
		Status:       models.MatchStatusOpen,
		Version:      1,
		CreatedAt:    time.Now().Add(time.Duration(s.seq) * time.Microsecond),
		UpdatedAt:    time.Now(),
	}
	s.matches[match.ID] = match
	s.order = append(s.order, match.ID)

	return copyMatch(match), nil
}

func (s *memStore) FindByID(ctx context.Context, id string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	return copyMatch(match), nil
}

func (s *memStore) ListOpen(ctx context.Context, activityType string) ([]*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Match
	for _, id := range s.order {
		match := s.matches[id]
		if match.ActivityType == activityType && match.Status == models.MatchStatusOpen {
			result = append(result, copyMatch(match))
		}
	}
	return result, nil
}

func (s *memStore) AddMember(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if s.beforeAddMember != nil {
		s.beforeAddMember(matchID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if match.HasMember(userID) {
		return copyMatch(match), nil
	}
	if match.Status != models.MatchStatusOpen || match.IsFull() {
		return nil, repository.ErrConflict
	}

	match.Members = append(match.Members, userID)
	if match.IsFull() {
		match.Status = models.MatchStatusFull
	}
	match.Version++
	match.UpdatedAt = time.Now()

	return copyMatch(match), nil
}

func (s *memStore) RemoveMember(ctx context.Context, matchID, userID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if match.Status == models.MatchStatusClosed {
		return nil, repository.ErrConflict
	}
	if !match.HasMember(userID) {
		return nil, repository.ErrNotMember
	}

	var members []string
	for _, id := range match.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	match.Members = members

	switch {
	case len(members) == 0:
		match.Status = models.MatchStatusClosed
	case match.Status == models.MatchStatusFull:
		match.Status = models.MatchStatusOpen
	}
	match.Version++
	match.UpdatedAt = time.Now()

	return copyMatch(match), nil
}

func (s *memStore) FindActiveByMember(ctx context.Context, activityType, userID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		match := s.matches[id]
		if match.ActivityType == activityType &&
			match.Status != models.MatchStatusClosed &&
			match.HasMember(userID) {
			return copyMatch(match), nil
		}
	}
	return nil, nil
}

func copyMatch(m *models.Match) *models.Match {
	clone := *m
	clone.Members = append([]string(nil), m.Members...)
	return &clone
}

func newTestService(store MatchStore) *MatchService {
	return NewMatchService(store, []string{"soccer", "basketball", "running"}, 5*time.Second)
}

func TestFindOrCreateMatch_CreateThenJoinThenFull(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	// 빈 상태에서 첫 요청은 새 매치 생성
	out1, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out1.Kind)
	assert.Equal(t, []string{"u1"}, out1.Match.Members)
	assert.Equal(t, models.MatchStatusOpen, out1.Match.Status)

	// 두 번째 요청은 기존 매치에 참가하고 FULL 전이
	out2, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u2", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	assert.Equal(t, OutcomeJoined, out2.Kind)
	assert.Equal(t, out1.Match.ID, out2.Match.ID)
	assert.Equal(t, []string{"u1", "u2"}, out2.Match.Members)
	assert.Equal(t, models.MatchStatusFull, out2.Match.Status)

	// 첫 매치가 가득 찼으므로 세 번째 요청은 새 매치 생성
	out3, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u3", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out3.Kind)
	assert.NotEqual(t, out1.Match.ID, out3.Match.ID)
}

func TestFindOrCreateMatch_Validation(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	_, err := svc.FindOrCreateMatch(ctx, MatchRequest{ActivityType: "soccer", MaxUsers: 2})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", MaxUsers: 2})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "curling", MaxUsers: 2})
	assert.ErrorIs(t, err, ErrUnknownActivity)

	// 1인 매치는 의미가 없다
	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 1})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestFindOrCreateMatch_TargetNotFound(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.FindOrCreateMatch(context.Background(), MatchRequest{
		UserID: "u1", ActivityType: "soccer", MaxUsers: 2, MatchID: "no-such-match",
	})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestFindOrCreateMatch_IncompatibleTarget(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	// running 매치를 soccer 요청의 대상으로 지정
	target, err := store.Create(ctx, "running", 2, "host")
	require.NoError(t, err)

	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{
		UserID: "u1", ActivityType: "soccer", MaxUsers: 2, MatchID: target.ID,
	})
	assert.ErrorIs(t, err, ErrIncompatibleMatch)

	// 희망 인원이 다른 경우도 불가
	target2, err := store.Create(ctx, "soccer", 4, "host2")
	require.NoError(t, err)

	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{
		UserID: "u1", ActivityType: "soccer", MaxUsers: 2, MatchID: target2.ID,
	})
	assert.ErrorIs(t, err, ErrIncompatibleMatch)
}

func TestFindOrCreateMatch_AlreadyMatched(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	out, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, out.Kind)

	// 같은 종목 재요청은 거부 (이중 제출 방어)
	_, err = svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 2})
	assert.ErrorIs(t, err, ErrAlreadyMatched)

	// 다른 종목은 허용
	out2, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "running", MaxUsers: 2})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out2.Kind)
}

func TestFindOrCreateMatch_OldestFirst(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	older, err := store.Create(ctx, "soccer", 3, "u1")
	require.NoError(t, err)
	_, err = store.Create(ctx, "soccer", 3, "u2")
	require.NoError(t, err)

	// 두 호환 매치 중 오래된 쪽에 참가
	out, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u3", ActivityType: "soccer", MaxUsers: 3})
	require.NoError(t, err)
	assert.Equal(t, OutcomeJoined, out.Kind)
	assert.Equal(t, older.ID, out.Match.ID)
}

func TestFindOrCreateMatch_TargetRaceFallsBack(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	target, err := store.Create(ctx, "soccer", 2, "host")
	require.NoError(t, err)

	// FindByID와 AddMember 사이에 다른 요청이 매치를 채우는 경합 재현
	filled := false
	store.beforeAddMember = func(matchID string) {
		if matchID == target.ID && !filled {
			filled = true
			store.mu.Lock()
			match := store.matches[target.ID]
			match.Members = append(match.Members, "sniper")
			match.Status = models.MatchStatusFull
			store.mu.Unlock()
		}
	}

	// 하드 실패 대신 새 매치 생성으로 강등
	out, err := svc.FindOrCreateMatch(ctx, MatchRequest{
		UserID: "u1", ActivityType: "soccer", MaxUsers: 2, MatchID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out.Kind)
	assert.NotEqual(t, target.ID, out.Match.ID)
}

func TestFindOrCreateMatch_ConcurrentPartition(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	const numUsers = 10
	const maxUsers = 4

	var wg sync.WaitGroup
	outcomes := make([]*MatchOutcome, numUsers)
	errs := make([]error, numUsers)

	for i := 0; i < numUsers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			outcomes[n], errs[n] = svc.FindOrCreateMatch(context.Background(), MatchRequest{
				UserID:       fmt.Sprintf("user-%d", n),
				ActivityType: "basketball",
				MaxUsers:     maxUsers,
			})
		}(i)
	}
	wg.Wait()

	// 모든 요청이 Joined 또는 Created로 끝나야 한다 (유실 없음)
	seen := make(map[string]int)
	for i := 0; i < numUsers; i++ {
		require.NoError(t, errs[i], "request %d", i)
		require.NotNil(t, outcomes[i])
		seen[fmt.Sprintf("user-%d", i)] = 0
	}

	// 최종 상태: 각 사용자는 정확히 하나의 매치에 속하고 정원 초과 없음
	store.mu.Lock()
	for _, match := range store.matches {
		assert.LessOrEqual(t, len(match.Members), maxUsers)
		if len(match.Members) == maxUsers {
			assert.Equal(t, models.MatchStatusFull, match.Status)
		}
		for _, member := range match.Members {
			seen[member]++
		}
	}
	store.mu.Unlock()

	for user, count := range seen {
		assert.Equal(t, 1, count, "user %s should appear in exactly one match", user)
	}
}

func TestLeaveMatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	out1, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	out2, err := svc.FindOrCreateMatch(ctx, MatchRequest{UserID: "u2", ActivityType: "soccer", MaxUsers: 2})
	require.NoError(t, err)
	require.Equal(t, models.MatchStatusFull, out2.Match.Status)

	// FULL 매치에서 이탈 → OPEN 복귀
	reopened, err := svc.LeaveMatch(ctx, "u2", out1.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusOpen, reopened.Status)

	// 멤버가 아닌 사용자
	_, err = svc.LeaveMatch(ctx, "stranger", out1.Match.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	// 마지막 멤버 이탈 → 매치 종료
	closed, err := svc.LeaveMatch(ctx, "u1", out1.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusClosed, closed.Status)

	// 닫힌 매치에서 이탈 불가
	_, err = svc.LeaveMatch(ctx, "u1", out1.Match.ID)
	assert.ErrorIs(t, err, ErrMatchClosed)

	_, err = svc.LeaveMatch(ctx, "u1", "no-such-match")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestListOpen(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.ListOpen(ctx, "")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.ListOpen(ctx, "curling")
	assert.ErrorIs(t, err, ErrUnknownActivity)

	_, err = store.Create(ctx, "soccer", 2, "u1")
	require.NoError(t, err)

	matches, err := svc.ListOpen(ctx, "soccer")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestIsCompatible(t *testing.T) {
	match := &models.Match{
		ActivityType: "soccer",
		MaxUsers:     2,
		Members:      []string{"u1"},
		Status:       models.MatchStatusOpen,
	}

	req := MatchRequest{UserID: "u2", ActivityType: "soccer", MaxUsers: 2}
	assert.True(t, IsCompatible(match, req))

	assert.False(t, IsCompatible(match, MatchRequest{UserID: "u2", ActivityType: "running", MaxUsers: 2}))
	assert.False(t, IsCompatible(match, MatchRequest{UserID: "u2", ActivityType: "soccer", MaxUsers: 4}))
	assert.False(t, IsCompatible(match, MatchRequest{UserID: "u1", ActivityType: "soccer", MaxUsers: 2}))

	full := &models.Match{ActivityType: "soccer", MaxUsers: 2, Members: []string{"a", "b"}, Status: models.MatchStatusFull}
	assert.False(t, IsCompatible(full, req))
}
