package service

import (
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/models"
)

// IsCompatible 요청이 해당 매치에 참가할 수 있는지 판정하는 순수 함수.
// 종목과 희망 인원이 정확히 일치하는 OPEN 매치만 허용하며
// (4인 매치를 원하는 요청은 2인 매치에 들어갈 수 없다),
// 요청자가 이미 멤버인 매치는 제외한다. 부수 효과 없음.
func IsCompatible(match *models.Match, req MatchRequest) bool {
	if match == nil {
		return false
	}
	if match.ActivityType != req.ActivityType {
		return false
	}
	if match.MaxUsers != req.MaxUsers {
		return false
	}
	if match.Status != models.MatchStatusOpen {
		return false
	}
	if match.HasMember(req.UserID) {
		return false
	}
	return true
}
