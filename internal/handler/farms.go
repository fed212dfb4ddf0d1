package handler

import (
	"errors"
	"net/http"
	"strconv"

	"agroyield/internal/middleware"
	"agroyield/internal/models"
	"agroyield/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FarmHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Reconcile(c *gin.Context)
}

type farmHandler struct {
	portfolioService service.PortfolioService
	log              *logrus.Logger
}

func NewFarmHandler(portfolioService service.PortfolioService, log *logrus.Logger) FarmHandler {
	return &farmHandler{portfolioService: portfolioService, log: log}
}

type CreateFarmRequest struct {
	Name         string  `json:"name"`
	CropType     string  `json:"cropType" binding:"required"`
	SowingDate   string  `json:"sowingDate" binding:"required"`
	AreaHectares float64 `json:"areaHectares" binding:"required"`
}

type ReconcileRequest struct {
	Farms []models.FarmSpec `json:"farms" binding:"required"`
}

func (h *farmHandler) List(c *gin.Context) {
	farms, err := h.portfolioService.ListFarms(middleware.FarmerID(c))
	if err != nil {
		h.writeError(c, err, "failed to list farms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"farms": farms})
}

func (h *farmHandler) Create(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	spec := models.FarmSpec{
		CropType:     &req.CropType,
		SowingDate:   &req.SowingDate,
		AreaHectares: &req.AreaHectares,
	}
	if req.Name != "" {
		spec.Name = &req.Name
	}

	farm, err := h.portfolioService.AddFarm(middleware.FarmerID(c), spec)
	if err != nil {
		h.writeError(c, err, "failed to create farm")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"farm": farm})
}

func (h *farmHandler) Update(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
		return
	}

	var update models.FarmUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	farm, err := h.portfolioService.UpdateFarm(middleware.FarmerID(c), farmID, update)
	if err != nil {
		h.writeError(c, err, "failed to update farm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm": farm})
}

// Delete removes a farm. Deleting a farm that no longer exists succeeds.
func (h *farmHandler) Delete(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
		return
	}

	if err := h.portfolioService.RemoveFarm(middleware.FarmerID(c), farmID); err != nil {
		h.writeError(c, err, "failed to delete farm")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "farm deleted"})
}

// Reconcile replaces the farmer's portfolio with the submitted set: farms
// carrying an id are updated, farms without one are created, and farms
// missing from the submission are removed.
func (h *farmHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	farms, err := h.portfolioService.Reconcile(middleware.FarmerID(c), req.Farms)
	if err != nil {
		h.writeError(c, err, "failed to reconcile farms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"farms": farms})
}

func (h *farmHandler) writeError(c *gin.Context, err error, fallbackMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnknownFarmer):
		c.JSON(http.StatusNotFound, gin.H{"error": "farmer not found"})
	case errors.Is(err, service.ErrFarmNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validationErr.Error()})
	default:
		h.log.Errorf("%s: %v", fallbackMsg, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
