package handlers

import (
	"net/http"
	"strconv"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/services"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	tourService *services.TourService
}

func NewTourHandler(tourService *services.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

func (h *TourHandler) List(c *gin.Context)   { ListHandler[models.Tour](h.tourService)(c) }
func (h *TourHandler) Get(c *gin.Context)    { GetHandler[models.Tour](h.tourService)(c) }
func (h *TourHandler) Create(c *gin.Context) { CreateHandler[models.Tour](h.tourService)(c) }
func (h *TourHandler) Update(c *gin.Context) { UpdateHandler[models.Tour](h.tourService)(c) }
func (h *TourHandler) Delete(c *gin.Context) { DeleteHandler(h.tourService)(c) }

// TopFive serves the curated best-rated listing.
func (h *TourHandler) TopFive(c *gin.Context) {
	result, err := h.tourService.TopFive(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", result)
}

// Stats serves the per-difficulty aggregation.
func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.tourService.Stats(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", stats)
}

// MonthlyPlan serves the per-month start-date breakdown for a year.
func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		utils.ErrorFrom(c, apperror.New(apperror.InvalidParameter, "Year must be a positive number"))
		return
	}

	plan, err := h.tourService.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", plan)
}
