package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/payment"
)

// PaymentController receives the gateway's three callback channels
// and resolves the pending session each one references. A callback
// for an unknown or already-resolved session gets 404; the gateway
// retries are thereby idempotent.
type PaymentController struct {
	Bridge *payment.Bridge
}

func NewPaymentController(bridge *payment.Bridge) *PaymentController {
	return &PaymentController{Bridge: bridge}
}

func (pc *PaymentController) resolve(c *gin.Context, gatewayOrderID string, res payment.Result) {
	if err := pc.Bridge.Resolve(gatewayOrderID, res); err != nil {
		if errors.Is(err, payment.ErrUnknownSession) {
			c.Error(apperrors.ErrNotFound)
			return
		}
		logger.Error(c.Request.Context(), "payment resolve failed", err,
			zap.String("gateway_order_id", gatewayOrderID))
		c.Error(apperrors.New(http.StatusInternalServerError, "failed to resolve payment", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": res.Outcome})
}

// Success handles the gateway's payment-captured callback.
func (pc *PaymentController) Success(c *gin.Context) {
	var payload payment.SuccessPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}
	pc.resolve(c, payload.GatewayOrderID, payload.Normalize())
}

// Failure handles the gateway's payment-failed callback.
func (pc *PaymentController) Failure(c *gin.Context) {
	var payload payment.FailurePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}
	pc.resolve(c, payload.GatewayOrderID, payload.Normalize())
}

// Dismissed handles the payer closing the gateway UI without paying.
func (pc *PaymentController) Dismissed(c *gin.Context) {
	var payload struct {
		GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}
	pc.resolve(c, payload.GatewayOrderID, payment.Cancelled())
}
