package models

import "time"

type MatchStatus string

const (
	MatchStatusOpen   MatchStatus = "OPEN"
	MatchStatusFull   MatchStatus = "FULL"
	MatchStatusClosed MatchStatus = "CLOSED"
)

// Match 하나의 체육 활동에 1..MaxUsers 명을 묶는 매칭 단위.
// Members 크기가 MaxUsers에 도달하면 같은 쓰기 안에서 FULL로 전이된다.
type Match struct {
	ID           string      `json:"matchId" db:"id"`
	ActivityType string      `json:"activityType" db:"activity_type"`
	MaxUsers     int         `json:"maxUsers" db:"max_users"`
	Members      []string    `json:"members" db:"members"`
	Status       MatchStatus `json:"status" db:"status"`
	Version      int         `json:"-" db:"version"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// HasMember 사용자가 이미 참여 중인지 확인
func (m *Match) HasMember(userID string) bool {
	for _, id := range m.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull 정원 도달 여부
func (m *Match) IsFull() bool {
	return len(m.Members) >= m.MaxUsers
}

// CanTransition 상태 전이 허용 여부.
// OPEN→FULL(정원 도달), OPEN→CLOSED(만료/명시적 종료),
// FULL→OPEN(인원 이탈), FULL→CLOSED. CLOSED는 종단 상태.
func (m *Match) CanTransition(to MatchStatus) bool {
	switch m.Status {
	case MatchStatusOpen:
		return to == MatchStatusFull || to == MatchStatusClosed
	case MatchStatusFull:
		return to == MatchStatusOpen || to == MatchStatusClosed
	default:
		return false
	}
}
