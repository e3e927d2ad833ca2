package handlers

import (
	"net/http"

	"tours-backend/internal/api/middleware"
	"tours-backend/internal/apperror"
	"tours-backend/internal/services"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List serves reviews, scoped to a tour when mounted on the nested route.
func (h *ReviewHandler) List(c *gin.Context) {
	result, err := h.reviewService.List(c.Request.Context(), c.Param("tourId"), c.Request.URL.Query())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", result)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", review)
}

// Create authors a review as the logged-in principal.
func (h *ReviewHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), principal, c.Param("tourId"), input)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Created successfully", review)
}

// Update edits a review; the service enforces owner-or-admin.
func (h *ReviewHandler) Update(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Updated successfully", review)
}

// Delete removes a review; the service enforces owner-or-admin.
func (h *ReviewHandler) Delete(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
