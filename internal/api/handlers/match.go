package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/api/middleware"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/service"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/logger"
)

// Matchmaker 매칭 엔진 계약 (핸들러가 소비하는 부분만)
type Matchmaker interface {
	FindOrCreateMatch(ctx context.Context, req service.MatchRequest) (*service.MatchOutcome, error)
	LeaveMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	ListOpen(ctx context.Context, activityType string) ([]*models.Match, error)
}

type MatchHandler struct {
	matchmaker Matchmaker
}

func NewMatchHandler(matchmaker Matchmaker) *MatchHandler {
	return &MatchHandler{matchmaker: matchmaker}
}

// 원본 클라이언트와의 호환 경계: 필드 이름을 바꾸지 않는다.
type requestMatchBody struct {
	ActivityType string `json:"activityType"`
	MaxUsers     int    `json:"maxUsers"`
	MatchID      string `json:"matchId"`
}

type leaveMatchBody struct {
	MatchID string `json:"matchId"`
}

// matchView 매칭 결과의 호출자용 투영
type matchView struct {
	MatchID      string             `json:"matchId"`
	ActivityType string             `json:"activityType"`
	MaxUsers     int                `json:"maxUsers"`
	Members      []string           `json:"members"`
	MemberCount  int                `json:"memberCount"`
	Status       models.MatchStatus `json:"status"`
}

func newMatchView(match *models.Match) matchView {
	return matchView{
		MatchID:      match.ID,
		ActivityType: match.ActivityType,
		MaxUsers:     match.MaxUsers,
		Members:      match.Members,
		MemberCount:  len(match.Members),
		Status:       match.Status,
	}
}

// RequestMatch 매칭 요청. 호환되는 매치에 참가시키거나 새로 만든다.
func (h *MatchHandler) RequestMatch(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"result": false,
			"reason": "NotLoggedInException",
		})
		return
	}

	var body requestMatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"result": false,
			"reason": "MissingValuesException",
		})
		return
	}

	outcome, err := h.matchmaker.FindOrCreateMatch(c.Request.Context(), service.MatchRequest{
		UserID:       userID,
		ActivityType: body.ActivityType,
		MaxUsers:     body.MaxUsers,
		MatchID:      body.MatchID,
	})
	if err != nil {
		failMatch(c, err)
		return
	}

	view := newMatchView(outcome.Match)
	c.JSON(http.StatusOK, gin.H{
		"result":       true,
		"outcome":      outcome.Kind,
		"matchId":      view.MatchID,
		"activityType": view.ActivityType,
		"members":      view.Members,
		"memberCount":  view.MemberCount,
		"maxUsers":     view.MaxUsers,
		"status":       view.Status,
	})
}

// LeaveMatch 매치 이탈
func (h *MatchHandler) LeaveMatch(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"result": false,
			"reason": "NotLoggedInException",
		})
		return
	}

	var body leaveMatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"result": false,
			"reason": "MissingValuesException",
		})
		return
	}

	match, err := h.matchmaker.LeaveMatch(c.Request.Context(), userID, body.MatchID)
	if err != nil {
		failMatch(c, err)
		return
	}

	view := newMatchView(match)
	c.JSON(http.StatusOK, gin.H{
		"result":      true,
		"matchId":     view.MatchID,
		"members":     view.Members,
		"memberCount": view.MemberCount,
		"maxUsers":    view.MaxUsers,
		"status":      view.Status,
	})
}

// GetMatchList 종목별 OPEN 매치 목록
func (h *MatchHandler) GetMatchList(c *gin.Context) {
	activityType := c.Query("activityType")

	matches, err := h.matchmaker.ListOpen(c.Request.Context(), activityType)
	if err != nil {
		failMatch(c, err)
		return
	}

	views := make([]matchView, 0, len(matches))
	for _, match := range matches {
		views = append(views, newMatchView(match))
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  true,
		"matches": views,
		"total":   len(views),
	})
}

// failMatch 엔진 에러를 호출자용 reason으로 투영
func failMatch(c *gin.Context, err error) {
	var status int
	var reason string

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status, reason = http.StatusUnauthorized, "NotLoggedInException"
	case errors.Is(err, service.ErrMissingField):
		status, reason = http.StatusBadRequest, "MissingValuesException"
	case errors.Is(err, service.ErrInvalidCapacity):
		status, reason = http.StatusBadRequest, "InvalidCapacityException"
	case errors.Is(err, service.ErrUnknownActivity):
		status, reason = http.StatusBadRequest, "UnknownActivityException"
	case errors.Is(err, service.ErrMatchNotFound):
		status, reason = http.StatusNotFound, "MatchNotFoundException"
	case errors.Is(err, service.ErrIncompatibleMatch):
		status, reason = http.StatusConflict, "IncompatibleMatchException"
	case errors.Is(err, service.ErrAlreadyMatched):
		status, reason = http.StatusConflict, "AlreadyMatchedException"
	case errors.Is(err, service.ErrNotMember):
		status, reason = http.StatusConflict, "NotAMemberException"
	case errors.Is(err, service.ErrMatchClosed):
		status, reason = http.StatusConflict, "MatchClosedException"
	case errors.Is(err, context.DeadlineExceeded):
		status, reason = http.StatusGatewayTimeout, "TimeoutException"
	default:
		logger.Error("Matchmaking failed", "error", err)
		status, reason = http.StatusInternalServerError, "StoreUnavailableException"
	}

	c.JSON(status, gin.H{
		"result": false,
		"reason": reason,
	})
}
