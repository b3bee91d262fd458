package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 서비스 상태 확인
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Heartbeat 클라이언트 생존 신호 응답 (원본 API 호환)
func Heartbeat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"result": "ok",
	})
}
