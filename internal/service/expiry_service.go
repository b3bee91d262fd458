package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/distributed"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/logger"
)

const expiryLockKey = "matchmaker:expiry:lock"

// ExpiryStore 만료 정리가 필요로 하는 저장소 계약
type ExpiryStore interface {
	CloseExpired(ctx context.Context, idleFor time.Duration) (int64, error)
}

// ExpiryService 일정 시간 인원 변동이 없는 OPEN 매치를 닫는 백그라운드 스윕.
// 요청 경로와 분리되어 있어 FindOrCreateMatch 지연에 영향을 주지 않는다.
// Redis 분산 락으로 여러 인스턴스 중 하나만 스윕을 수행한다.
type ExpiryService struct {
	store       ExpiryStore
	lockManager *distributed.RedisLockManager
	instanceID  string
	interval    time.Duration
	idleFor     time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.Mutex
}

func NewExpiryService(store ExpiryStore, lockManager *distributed.RedisLockManager, interval, idleFor time.Duration) *ExpiryService {
	return &ExpiryService{
		store:       store,
		lockManager: lockManager,
		instanceID:  uuid.NewString(),
		interval:    interval,
		idleFor:     idleFor,
		stopChan:    make(chan struct{}),
	}
}

// Start 만료 스윕 시작
func (s *ExpiryService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	logger.Info("Starting ExpiryService",
		"interval", s.interval,
		"idleFor", s.idleFor,
	)

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop 만료 스윕 중지
func (s *ExpiryService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	logger.Info("Stopping ExpiryService")
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("ExpiryService stopped")
}

// sweepLoop 주기적 스윕 실행
func (s *ExpiryService) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// 시작 시 한번 실행
	s.runSweep()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stopChan:
			return
		}
	}
}

// runSweep 분산 락을 잡고 만료 매치 정리.
// 다른 인스턴스가 이미 스윕 중이면 이번 틱은 건너뛴다.
func (s *ExpiryService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lock, err := s.lockManager.AcquireLock(ctx, expiryLockKey, s.instanceID, s.interval)
	if err != nil {
		if errors.Is(err, distributed.ErrLockNotAcquired) {
			logger.Debug("Expiry sweep already running on another instance")
			return
		}
		logger.Error("Failed to acquire expiry lock", "error", err)
		return
	}

	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, distributed.ErrLockNotHeld) {
			logger.Error("Failed to release expiry lock", "error", err)
		}
	}()

	closed, err := s.store.CloseExpired(ctx, s.idleFor)
	if err != nil {
		logger.Error("Failed to close expired matches", "error", err)
		return
	}

	if closed > 0 {
		logger.Info("Expired matches closed", "count", closed)
	}
}
