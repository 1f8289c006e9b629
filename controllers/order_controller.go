package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/middleware"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/orders"
)

type OrderController struct {
	Repo orders.HistoryRepository
}

func NewOrderController(repo orders.HistoryRepository) *OrderController {
	return &OrderController{Repo: repo}
}

// GetHistory returns the signed-in customer's order history. A
// customer with no orders yet gets an empty history, not a 404.
func (oc *OrderController) GetHistory(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.Error(apperrors.ErrIdentityMissing)
		return
	}

	history, err := oc.Repo.Get(c.Request.Context(), id.Email)
	if err != nil {
		logger.Error(c.Request.Context(), "get order history failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to get orders", err))
		return
	}
	if history == nil {
		history = &models.OrderHistory{Email: id.Email, Orders: []models.Order{}}
	}
	c.JSON(http.StatusOK, history)
}
