package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/checkout"
	"github.com/craftandcart/storefront/config"
	"github.com/craftandcart/storefront/controllers"
	"github.com/craftandcart/storefront/identity"
	"github.com/craftandcart/storefront/middleware"
	"github.com/craftandcart/storefront/orders"
	"github.com/craftandcart/storefront/payment"
	"github.com/craftandcart/storefront/wishlist"
)

// Deps carries the wired engine pieces the routes expose.
type Deps struct {
	Cart     *cart.Manager
	Wishlist *wishlist.Manager
	Registry *checkout.Registry
	Bridge   *payment.Bridge
	Orders   orders.HistoryRepository
	Identity identity.Provider
	Config   config.Config
}

func Register(r *gin.Engine, d Deps) {
	r.Use(apperrors.ErrorMiddleware())
	r.Use(middleware.Identity(d.Identity))

	cartController := controllers.NewCartController(d.Cart)
	cartRoutes := r.Group("/cart")
	{
		cartRoutes.GET("/", cartController.GetCart)
		cartRoutes.POST("/add", cartController.AddItem)
		cartRoutes.PATCH("/items/:product_id", cartController.SetQuantity)
		cartRoutes.DELETE("/remove/:product_id", cartController.RemoveItem)
		cartRoutes.DELETE("/clear", cartController.ClearCart)
	}

	wishlistController := controllers.NewWishlistController(d.Wishlist, d.Cart, d.Config.StoreURL)
	wishlistRoutes := r.Group("/wishlist")
	{
		wishlistRoutes.GET("/", wishlistController.GetWishlist)
		wishlistRoutes.POST("/toggle", wishlistController.Toggle)
		wishlistRoutes.DELETE("/remove/:product_id", wishlistController.RemoveItem)
		wishlistRoutes.DELETE("/clear", wishlistController.ClearWishlist)
		wishlistRoutes.POST("/move-to-cart", wishlistController.MoveAllToCart)
		wishlistRoutes.GET("/share", wishlistController.ShareLink)
	}

	checkoutController := controllers.NewCheckoutController(d.Registry)
	checkoutRoutes := r.Group("/checkout")
	checkoutRoutes.Use(middleware.RateLimit())
	{
		checkoutRoutes.POST("/", checkoutController.Start)
		checkoutRoutes.GET("/:id", checkoutController.GetState)
		checkoutRoutes.POST("/:id/information", checkoutController.SubmitInformation)
		checkoutRoutes.PATCH("/:id/field", checkoutController.UpdateField)
		checkoutRoutes.POST("/:id/review", checkoutController.ConfirmReview)
		checkoutRoutes.POST("/:id/back", checkoutController.Back)
		checkoutRoutes.POST("/:id/abandon", checkoutController.Abandon)
		checkoutRoutes.POST("/:id/pay", checkoutController.Pay)
	}

	paymentController := controllers.NewPaymentController(d.Bridge)
	paymentRoutes := r.Group("/payments")
	paymentRoutes.Use(middleware.RateLimit())
	{
		paymentRoutes.POST("/callback/success", paymentController.Success)
		paymentRoutes.POST("/callback/failure", paymentController.Failure)
		paymentRoutes.POST("/callback/dismissed", paymentController.Dismissed)
	}

	orderController := controllers.NewOrderController(d.Orders)
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(middleware.RequireIdentity(d.Identity))
	{
		orderRoutes.GET("/", orderController.GetHistory)
	}
}
