package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/database"
)

const matchColumns = `id, activity_type, max_users, members, status, version, created_at, updated_at`

type MatchRepository struct {
	db *database.DB
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create 새 매치 생성. 첫 멤버 한 명으로 OPEN 상태로 시작한다.
func (r *MatchRepository) Create(ctx context.Context, activityType string, maxUsers int, firstMember string) (*models.Match, error) {
	if maxUsers < 1 {
		return nil, ErrInvalidCapacity
	}

	query := `
		INSERT INTO matches (id, activity_type, max_users, members, status, version)
		VALUES ($1, $2, $3, $4, 'OPEN', 1)
		RETURNING ` + matchColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		activityType,
		maxUsers,
		pq.Array([]string{firstMember}),
	)

	match, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return match, nil
}

// FindByID ID로 매치 찾기. 없으면 (nil, nil).
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	return match, nil
}

// ListOpen 해당 종목의 OPEN 매치 목록. 오래 기다린 매치부터 채우도록 생성순 정렬.
func (r *MatchRepository) ListOpen(ctx context.Context, activityType string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE activity_type = $1 AND status = 'OPEN'
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, activityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}

// AddMember 멤버 추가. 유일한 변경 경로이며 단일 guarded UPDATE로 원자적이다:
// 정원 검사, 멤버 추가, FULL 전이가 한 문장에서 일어나므로 동시 요청 두 개가
// 정원을 초과시킬 수 없다. version은 변경마다 증가한다.
// 매치가 없으면 ErrNotFound, 가득 찼거나 닫혔으면 ErrConflict,
// 이미 멤버면 현재 상태를 그대로 반환한다 (no-op 성공, 재시도 멱등성).
func (r *MatchRepository) AddMember(ctx context.Context, matchID, userID string) (*models.Match, error) {
	query := `
		UPDATE matches
		SET members = array_append(members, $2),
		    status = CASE WHEN cardinality(members) + 1 >= max_users THEN 'FULL' ELSE status END,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'OPEN'
		  AND NOT ($2 = ANY(members))
		  AND cardinality(members) < max_users
		RETURNING ` + matchColumns

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, matchID, userID))
	if err == nil {
		return match, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	// UPDATE가 거부됨 — 원인 분류를 위한 후속 조회.
	// 판정 자체는 위의 원자적 UPDATE가 이미 끝낸 상태다.
	current, err := r.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if current.HasMember(userID) {
		return current, nil
	}

	return nil, ErrConflict
}

// RemoveMember 멤버 이탈. FULL 매치는 OPEN으로 돌아가고,
// 마지막 멤버가 나가면 매치를 닫는다 (OPEN/FULL 매치의 멤버는 항상 1명 이상).
func (r *MatchRepository) RemoveMember(ctx context.Context, matchID, userID string) (*models.Match, error) {
	query := `
		UPDATE matches
		SET members = array_remove(members, $2),
		    status = CASE
		        WHEN cardinality(members) <= 1 THEN 'CLOSED'
		        WHEN status = 'FULL' THEN 'OPEN'
		        ELSE status
		    END,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND status IN ('OPEN', 'FULL')
		  AND $2 = ANY(members)
		RETURNING ` + matchColumns

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, matchID, userID))
	if err == nil {
		return match, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	current, err := r.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if !current.HasMember(userID) {
		return nil, ErrNotMember
	}

	return nil, ErrConflict
}

// FindActiveByMember 사용자가 참여 중인 OPEN/FULL 매치 조회 (종목별 중복 참여 방지용).
// 없으면 (nil, nil).
func (r *MatchRepository) FindActiveByMember(ctx context.Context, activityType, userID string) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE activity_type = $1
		  AND status IN ('OPEN', 'FULL')
		  AND $2 = ANY(members)
		LIMIT 1
	`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, activityType, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active match: %w", err)
	}

	return match, nil
}

// Close 명시적 종료. 이미 닫힌 매치는 그대로 성공 처리.
func (r *MatchRepository) Close(ctx context.Context, matchID string) error {
	query := `
		UPDATE matches
		SET status = 'CLOSED', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status <> 'CLOSED'
	`

	result, err := r.db.ExecContext(ctx, query, matchID)
	if err != nil {
		return fmt.Errorf("failed to close match: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close match: %w", err)
	}

	if affected == 0 {
		match, err := r.FindByID(ctx, matchID)
		if err != nil {
			return err
		}
		if match == nil {
			return ErrNotFound
		}
	}

	return nil
}

// CloseExpired 일정 시간 동안 인원 변동이 없는 OPEN 매치 일괄 종료.
// 만료 정리는 요청 경로가 아니라 백그라운드 스윕에서만 호출된다.
func (r *MatchRepository) CloseExpired(ctx context.Context, idleFor time.Duration) (int64, error) {
	query := `
		UPDATE matches
		SET status = 'CLOSED', version = version + 1, updated_at = NOW()
		WHERE status = 'OPEN' AND updated_at < NOW() - $1::interval
	`

	result, err := r.db.ExecContext(ctx, query, fmt.Sprintf("%d seconds", int(idleFor.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("failed to close expired matches: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to close expired matches: %w", err)
	}

	return affected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.ActivityType,
		&match.MaxUsers,
		pq.Array(&match.Members),
		&match.Status,
		&match.Version,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}
