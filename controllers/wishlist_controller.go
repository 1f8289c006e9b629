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
	"github.com/craftandcart/storefront/wishlist"
)

type WishlistController struct {
	Wishlist *wishlist.Manager
	Cart     *cart.Manager
	StoreURL string
}

func NewWishlistController(wm *wishlist.Manager, cm *cart.Manager, storeURL string) *WishlistController {
	return &WishlistController{Wishlist: wm, Cart: cm, StoreURL: storeURL}
}

// GetWishlist returns the owner's saved products.
func (wc *WishlistController) GetWishlist(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	items, err := wc.Wishlist.Items(c.Request.Context(), owner)
	if err != nil {
		logger.Error(c.Request.Context(), "get wishlist failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to get wishlist", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Toggle flips a product in or out of the wishlist and reports the
// resulting membership, so a heart button needs no separate read.
func (wc *WishlistController) Toggle(c *gin.Context) {
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

	added, err := wc.Wishlist.Toggle(c.Request.Context(), owner, product)
	if err != nil {
		logger.Error(c.Request.Context(), "wishlist toggle failed", err, zap.String("product_id", product.ID))
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to update wishlist", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": added})
}

// RemoveItem drops a product from the wishlist.
func (wc *WishlistController) RemoveItem(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	if err := wc.Wishlist.Remove(c.Request.Context(), owner, c.Param("product_id")); err != nil {
		logger.Error(c.Request.Context(), "wishlist remove failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to update wishlist", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// ClearWishlist empties the wishlist.
func (wc *WishlistController) ClearWishlist(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	if err := wc.Wishlist.Clear(c.Request.Context(), owner); err != nil {
		logger.Error(c.Request.Context(), "wishlist clear failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to clear wishlist", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "wishlist cleared"})
}

// MoveAllToCart merges every saved product into the cart. The
// wishlist itself is left as-is.
func (wc *WishlistController) MoveAllToCart(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	items, err := wc.Wishlist.AddAllToCart(c.Request.Context(), owner, wc.Cart)
	if err != nil {
		logger.Error(c.Request.Context(), "wishlist move to cart failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to move wishlist to cart", err))
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// ShareLink returns a URL preloaded with the wishlist's product ids.
func (wc *WishlistController) ShareLink(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}

	link, err := wc.Wishlist.ShareLink(c.Request.Context(), owner, wc.StoreURL)
	if err != nil {
		logger.Error(c.Request.Context(), "wishlist share link failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to build share link", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
