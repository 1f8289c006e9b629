package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/middleware"
	"github.com/craftandcart/storefront/models"
)

type CartController struct {
	Cart *cart.Manager
}

func NewCartController(cm *cart.Manager) *CartController {
	return &CartController{Cart: cm}
}

func cartResponse(items []models.CartItem) gin.H {
	return gin.H{
		"items":      items,
		"total":      cart.TotalOf(items),
		"item_count": cart.CountOf(items),
	}
}

// GetCart returns the owner's cart with its derived totals.
func (cc *CartController) GetCart(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	items, err := cc.Cart.Items(c.Request.Context(), owner)
	if err != nil {
		logger.Error(c.Request.Context(), "get cart failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to get cart", err))
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// AddItem adds one unit of a product, merging with an existing line.
func (cc *CartController) AddItem(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil || product.ID == "" {
		logger.Warn(c.Request.Context(), "invalid product payload", zap.Error(err))
		c.Error(apperrors.ErrBadRequest)
		return
	}

	items, err := cc.Cart.Add(c.Request.Context(), owner, product)
	if err != nil {
		logger.Error(c.Request.Context(), "add to cart failed", err, zap.String("product_id", product.ID))
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to save cart", err))
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// SetQuantity replaces a line's quantity; zero or less removes it.
func (cc *CartController) SetQuantity(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}

	items, err := cc.Cart.SetQuantity(c.Request.Context(), owner, c.Param("product_id"), body.Quantity)
	if err != nil {
		logger.Error(c.Request.Context(), "set quantity failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to update cart", err))
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// RemoveItem drops a product line; removing an absent line is a no-op.
func (cc *CartController) RemoveItem(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	items, err := cc.Cart.Remove(c.Request.Context(), owner, c.Param("product_id"))
	if err != nil {
		logger.Error(c.Request.Context(), "remove from cart failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to update cart", err))
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// ClearCart empties the cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	if err := cc.Cart.Clear(c.Request.Context(), owner); err != nil {
		logger.Error(c.Request.Context(), "clear cart failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to clear cart", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
