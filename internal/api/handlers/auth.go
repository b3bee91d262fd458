package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/api/middleware"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/config"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/internal/service"
	jwtutil "github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/jwt"
	"github.com/jungin500/APP-military-sports-matchmaker-AnJungIn-KimBeomSu-LimDaeIn/pkg/logger"
)

type AuthHandler struct {
	userService *service.UserService
	jwtManager  *jwtutil.JWTManager
}

func NewAuthHandler(userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
	}
}

type registerRequest struct {
	ID            string `json:"id"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	Unit          string `json:"unit"`
	Gender        string `json:"gender"`
	FavoriteEvent string `json:"favoriteEvent"`
	Description   string `json:"description"`
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type checkExistingUserRequest struct {
	ID string `json:"id"`
}

// Register 회원가입
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"result": false,
			"reason": "MissingValuesException",
		})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		ID:            req.ID,
		Password:      req.Password,
		Name:          req.Name,
		Rank:          req.Rank,
		Unit:          req.Unit,
		Gender:        req.Gender,
		FavoriteEvent: req.FavoriteEvent,
		Description:   req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			// 정보 중 하나라도 빠졌을 시 오류
			c.JSON(http.StatusBadRequest, gin.H{
				"result": false,
				"reason": "MissingValuesException",
			})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{
				"result": false,
				"reason": "AlreadyExistingException",
			})
		default:
			logger.Error("Failed to register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"result": false,
				"reason": "StoreUnavailableException",
			})
		}
		return
	}

	logger.Info("User registered", "userId", user.ID, "name", user.Name)

	c.JSON(http.StatusCreated, gin.H{
		"result": true,
		"id":     user.ID,
		"name":   user.Name,
	})
}

// Login 로그인
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"result": false,
			"reason": "MissingValuesException",
		})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			c.JSON(http.StatusBadRequest, gin.H{
				"result": false,
				"reason": "MissingValuesException",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"result": false,
				"reason": "InvalidCredentialsException",
			})
		default:
			logger.Error("Failed to login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"result": false,
				"reason": "StoreUnavailableException",
			})
		}
		return
	}

	// JWT 토큰 생성
	token, err := h.jwtManager.Generate(user.ID, user.Name, user.Rank)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"result": false,
			"reason": "TokenGenerationException",
		})
		return
	}

	logger.Info("User logged in", "userId", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"result": true,
		"token":  token,
		"user": gin.H{
			"id":            user.ID,
			"name":          user.Name,
			"rank":          user.Rank,
			"unit":          user.Unit,
			"favoriteEvent": user.FavoriteEvent,
		},
	})
}

// Logout 로그아웃. 토큰은 무상태이므로 폐기는 클라이언트 몫이다.
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, ok := middleware.CurrentUserID(c); ok {
		logger.Info("User logged out", "userId", userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"result": true,
	})
}

// CheckLoggedIn 로그인 상태 확인
func (h *AuthHandler) CheckLoggedIn(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"logged_as": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logged_as": userID,
	})
}

// CheckExistingUser 기존 회원 ID 확인
func (h *AuthHandler) CheckExistingUser(c *gin.Context) {
	var req checkExistingUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"result": false,
			"reason": "MissingValuesException",
		})
		return
	}

	exists, err := h.userService.Exists(c.Request.Context(), req.ID)
	if err != nil {
		logger.Error("Failed to check existing user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"result": false,
			"reason": "StoreUnavailableException",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": exists,
	})
}
