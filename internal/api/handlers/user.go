package handlers

import (
	"net/http"

	"tours-backend/internal/models"
	"tours-backend/internal/services"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler is the admin-only user management surface.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context)   { ListHandler[models.User](h.userService)(c) }
func (h *UserHandler) Get(c *gin.Context)    { GetHandler[models.User](h.userService)(c) }
func (h *UserHandler) Update(c *gin.Context) { UpdateHandler[models.User](h.userService)(c) }
func (h *UserHandler) Delete(c *gin.Context) { DeleteHandler(h.userService)(c) }

// Create provisions an account with an explicit role, unlike signup.
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Created successfully", user)
}
