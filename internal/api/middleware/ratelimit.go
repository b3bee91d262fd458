package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/ratelimit"
)

// RateLimitConfig Rate Limit 설정
type RateLimitConfig struct {
	Capacity   int64                     // Maximum number of requests
	RefillRate int64                     // Requests per second
	KeyFunc    func(*gin.Context) string // Function to extract rate limit key
}

// DefaultKeyFunc 인증된 사용자는 userId, 아니면 IP 주소를 키로 사용
func DefaultKeyFunc(c *gin.Context) string {
	if userID, ok := CurrentUserID(c); ok {
		return fmt.Sprintf("user:%s", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimit 토큰 버킷 기반 Rate Limit 미들웨어
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	limiter := ratelimit.NewRateLimiter(config.Capacity, config.RefillRate)

	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		if !limiter.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"result": false,
				"reason": "TooManyRequestsException",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
