package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/config"
	jwtutil "github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/jwt"
)

// Auth JWT 인증 미들웨어. 검증된 사용자 정보를 context에 저장한다.
// 매칭 코어는 여기서 넘겨준 신원만 신뢰하고 스스로 인증하지 않는다.
func Auth(cfg *config.Config) gin.HandlerFunc {
	jwtManager := jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	return func(c *gin.Context) {
		claims, ok := verifyRequest(c, jwtManager)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"result": false,
				"reason": "NotLoggedInException",
			})
			c.Abort()
			return
		}

		// 검증 성공 - 사용자 정보를 context에 저장
		c.Set("userId", claims.UserID)
		c.Set("name", claims.Name)

		c.Next()
	}
}

// OptionalAuth 토큰이 있으면 검증해 신원을 싣고, 없어도 통과시킨다.
// checkLoggedIn처럼 익명 호출이 허용되는 경로용.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	jwtManager := jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	return func(c *gin.Context) {
		if claims, ok := verifyRequest(c, jwtManager); ok {
			c.Set("userId", claims.UserID)
			c.Set("name", claims.Name)
		}
		c.Next()
	}
}

// CurrentUserID 인증된 호출자의 사용자 ID를 돌려주는 신원 어댑터.
// 익명이면 두 번째 반환값이 false.
func CurrentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get("userId")
	if !exists {
		return "", false
	}

	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}

	return userID, true
}

func verifyRequest(c *gin.Context, jwtManager *jwtutil.JWTManager) (*jwtutil.Claims, bool) {
	// Authorization 헤더에서 토큰 추출
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// "Bearer <token>" 형식 파싱
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwtManager.Verify(parts[1])
	if err != nil {
		return nil, false
	}

	return claims, true
}
