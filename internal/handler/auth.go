package handler

import (
	"errors"
	"net/http"

	"agroyield/internal/middleware"
	"agroyield/internal/models"
	"agroyield/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Me(c *gin.Context)
	UpdateMe(c *gin.Context)
	DeleteMe(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, log: log}
}

type RegisterRequest struct {
	Name              string   `json:"name" binding:"required"`
	Phone             string   `json:"phone" binding:"required"`
	Password          string   `json:"password" binding:"required"`
	PreferredLanguage string   `json:"preferredLanguage"`
	LocationLat       *float64 `json:"locationLat"`
	LocationLon       *float64 `json:"locationLon"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for registration: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	farmer, token, expiresAt, err := h.authService.Register(
		req.Name, req.Phone, req.Password, req.PreferredLanguage, req.LocationLat, req.LocationLon,
	)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrDuplicatePhone):
			c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validationErr.Error()})
		default:
			h.log.Errorf("Failed to register farmer: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register farmer"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"farmer":    farmer,
		"token":     token,
		"expiresAt": expiresAt,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	farmer, token, expiresAt, err := h.authService.Authenticate(req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrFarmerNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.log.Errorf("Failed to login farmer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"farmer":    farmer,
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// Me returns the authenticated farmer's profile (credential hash excluded).
func (h *authHandler) Me(c *gin.Context) {
	farmer, err := h.authService.GetByID(middleware.FarmerID(c))
	if err != nil {
		h.log.Errorf("Failed to get farmer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve farmer"})
		return
	}
	if farmer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "farmer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"farmer": farmer})
}

func (h *authHandler) UpdateMe(c *gin.Context) {
	var update models.FarmerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	farmer, err := h.authService.Update(middleware.FarmerID(c), update)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrFarmerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "farmer not found"})
		case errors.Is(err, service.ErrDuplicatePhone):
			c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validationErr.Error()})
		default:
			h.log.Errorf("Failed to update farmer: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update farmer"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"farmer": farmer})
}

// DeleteMe removes the farmer profile; owned farms are deleted with it.
func (h *authHandler) DeleteMe(c *gin.Context) {
	if err := h.authService.Delete(middleware.FarmerID(c)); err != nil {
		h.log.Errorf("Failed to delete farmer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete farmer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "farmer deleted"})
}
