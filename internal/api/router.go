package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/api/handlers"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/api/middleware"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/config"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/repository"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/service"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/database"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/distributed"
)

// SetupRouter API 라우터 설정. 만료 스윕 서비스를 함께 반환한다 (종료 시 Stop 필요).
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client) (*gin.Engine, *service.ExpiryService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Service 초기화
	userService := service.NewUserService(userRepo)
	matchService := service.NewMatchService(matchRepo, cfg.ActivityTypes, cfg.MatchRequestTimeout)

	// 만료 스윕 초기화 및 시작 (Redis 분산 락으로 단일 인스턴스 실행 보장)
	lockManager := distributed.NewRedisLockManager(redisClient)
	expiryService := service.NewExpiryService(matchRepo, lockManager, cfg.ExpirySweepInterval, cfg.MatchExpiry)
	expiryService.Start()

	// Handler 초기화
	authHandler := handlers.NewAuthHandler(userService, cfg)
	matchHandler := handlers.NewMatchHandler(matchService)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// 원본 클라이언트 호환 경로
	process := router.Group("/process")
	process.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefill,
	}))
	{
		process.POST("/registerUser", authHandler.Register)
		process.POST("/loginUser", authHandler.Login)
		process.GET("/logoutUser", middleware.Auth(cfg), authHandler.Logout)
		process.GET("/checkLoggedIn", middleware.OptionalAuth(cfg), authHandler.CheckLoggedIn)
		process.POST("/checkExistingUser", authHandler.CheckExistingUser)

		process.GET("/getMatchList", matchHandler.GetMatchList)
		process.POST("/requestMatch", middleware.Auth(cfg), matchHandler.RequestMatch)
		process.POST("/leaveMatch", middleware.Auth(cfg), matchHandler.LeaveMatch)

		process.GET("/heartbeat", handlers.Heartbeat)
	}

	return router, expiryService
}
