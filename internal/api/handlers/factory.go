package handlers

import (
	"context"
	"net/http"
	"net/url"

	"tours-backend/internal/query"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// The factory builds gin handlers for the CRUD shape shared by every
// resource: query-driven lists, id lookups, and whitelisted map-input
// writes. Resource-specific behavior stays in the services; the factory
// only adapts HTTP.

type Lister[T any] interface {
	List(ctx context.Context, values url.Values) (*query.Result[T], error)
}

type Getter[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
}

type Creator[T any] interface {
	Create(ctx context.Context, input map[string]interface{}) (*T, error)
}

type Updater[T any] interface {
	Update(ctx context.Context, id string, input map[string]interface{}) (*T, error)
}

type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// ListHandler serves filtered, sorted, projected, paginated collections.
func ListHandler[T any](service Lister[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := service.List(c.Request.Context(), c.Request.URL.Query())
		if err != nil {
			utils.ErrorFrom(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", result)
	}
}

// GetHandler serves a single document by its id path parameter.
func GetHandler[T any](service Getter[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.ErrorFrom(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Retrieved successfully", doc)
	}
}

// CreateHandler accepts an arbitrary JSON object; the service whitelist
// decides which fields survive.
func CreateHandler[T any](service Creator[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input map[string]interface{}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
			return
		}

		doc, err := service.Create(c.Request.Context(), input)
		if err != nil {
			utils.ErrorFrom(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusCreated, "Created successfully", doc)
	}
}

// UpdateHandler applies a whitelisted partial merge.
func UpdateHandler[T any](service Updater[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input map[string]interface{}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
			return
		}

		doc, err := service.Update(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			utils.ErrorFrom(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Updated successfully", doc)
	}
}

// DeleteHandler removes a document by id.
func DeleteHandler(service Deleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Delete(c.Request.Context(), c.Param("id")); err != nil {
			utils.ErrorFrom(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
