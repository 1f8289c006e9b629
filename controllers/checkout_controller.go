package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/checkout"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/middleware"
	"github.com/craftandcart/storefront/models"
)

type CheckoutController struct {
	Registry *checkout.Registry
}

func NewCheckoutController(registry *checkout.Registry) *CheckoutController {
	return &CheckoutController{Registry: registry}
}

// flowSnapshot is the full view a checkout page renders from.
func flowSnapshot(f *checkout.Flow) gin.H {
	snapshot := gin.H{
		"checkout_id":  f.ID,
		"state":        f.State(),
		"draft":        f.Draft(),
		"items":        f.Items(),
		"total":        cart.TotalOf(f.Items()),
		"field_errors": f.FieldErrors(),
	}
	if failure := f.LastFailure(); failure != nil {
		snapshot["payment_failure"] = failure
	}
	if conf, ok := f.Confirmation(); ok {
		snapshot["confirmation"] = conf
	}
	return snapshot
}

// Start opens a checkout for the owner's cart. An empty cart is
// rejected and no flow is registered.
func (cc *CheckoutController) Start(c *gin.Context) {
	owner, ok := middleware.Owner(c)
	if !ok {
		return
	}
	identityEmail := ""
	if id, ok := middleware.CurrentIdentity(c); ok {
		identityEmail = id.Email
	}

	f, err := cc.Registry.Start(c.Request.Context(), owner, identityEmail)
	if err != nil {
		if errors.Is(err, checkout.ErrCartEmpty) {
			c.Error(apperrors.ErrCartEmpty)
			return
		}
		logger.Error(c.Request.Context(), "checkout start failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to start checkout", err))
		return
	}
	logger.Info(c.Request.Context(), "checkout started", zap.String("checkout_id", f.ID))
	c.JSON(http.StatusCreated, flowSnapshot(f))
}

func (cc *CheckoutController) flow(c *gin.Context) (*checkout.Flow, bool) {
	f, ok := cc.Registry.Get(c.Param("id"))
	if !ok {
		c.Error(apperrors.ErrNotFound)
		return nil, false
	}
	return f, true
}

// GetState returns the flow snapshot.
func (cc *CheckoutController) GetState(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flowSnapshot(f))
}

// SubmitInformation validates the contact and address form. A failing
// draft returns the per-field messages and leaves the flow where it is.
func (cc *CheckoutController) SubmitInformation(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	var draft models.CheckoutDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}

	switch err := f.SubmitInformation(draft); {
	case errors.Is(err, checkout.ErrValidationFailed):
		// the per-field map is the payload here, not an error envelope
		c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": f.FieldErrors()})
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
	case err != nil:
		logger.Error(c.Request.Context(), "submit information failed", err)
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to submit information", err))
	default:
		c.JSON(http.StatusOK, flowSnapshot(f))
	}
}

// UpdateField edits one form field; its own error clears when filled.
func (cc *CheckoutController) UpdateField(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	var body struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}

	switch err := f.UpdateField(body.Field, body.Value); {
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
	case err != nil:
		c.Error(apperrors.New(http.StatusBadRequest, err.Error(), err))
	default:
		c.JSON(http.StatusOK, gin.H{"field_errors": f.FieldErrors()})
	}
}

// ConfirmReview acknowledges the review step and moves to payment.
func (cc *CheckoutController) ConfirmReview(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	if err := f.ConfirmReview(); err != nil {
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, flowSnapshot(f))
}

// Back steps one phase backward, cancelling any pending payment wait.
func (cc *CheckoutController) Back(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	if err := f.Back(); err != nil {
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, flowSnapshot(f))
}

// Abandon exits the checkout and drops the flow.
func (cc *CheckoutController) Abandon(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	if err := f.Abandon(); err != nil {
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
		return
	}
	cc.Registry.Remove(f.ID)
	c.JSON(http.StatusOK, gin.H{"state": checkout.StateAbandoned})
}

// Pay opens a gateway session for the cart total and returns the
// gateway order the client hands to the hosted payment UI. The
// outcome arrives later on the payment callback routes.
func (cc *CheckoutController) Pay(c *gin.Context) {
	f, ok := cc.flow(c)
	if !ok {
		return
	}

	order, err := f.StartPayment(c.Request.Context())
	switch {
	case errors.Is(err, checkout.ErrPaymentInFlight):
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
	case errors.Is(err, checkout.ErrCartEmpty):
		c.Error(apperrors.ErrCartEmpty)
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.Error(apperrors.New(http.StatusConflict, err.Error(), err))
	case err != nil:
		logger.Error(c.Request.Context(), "gateway order creation failed", err)
		c.Error(apperrors.ErrPaymentFailed)
	default:
		c.JSON(http.StatusOK, gin.H{"gateway_order": order})
	}
}
