package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sena-tools/coupon-relay/internal/publisher"
	"github.com/sena-tools/coupon-relay/internal/redeem"
	log "github.com/sirupsen/logrus"
)

// RedeemHandler serves the redemption endpoint.
type RedeemHandler struct {
	service *redeem.Service
}

// NewRedeemHandler constructs a RedeemHandler.
func NewRedeemHandler(service *redeem.Service) *RedeemHandler {
	return &RedeemHandler{service: service}
}

// redeemRequest defines the request body for one redemption.
type redeemRequest struct {
	UID        string `json:"uid"`
	CouponCode string `json:"couponCode"`
}

// Redeem proxies one coupon redemption to the publisher.
func (h *RedeemHandler) Redeem(c *gin.Context) {
	var body redeemRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User ID and Coupon Code are required"})
		return
	}
	if strings.TrimSpace(body.UID) == "" || strings.TrimSpace(body.CouponCode) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User ID and Coupon Code are required"})
		return
	}

	outcome, errRedeem := h.service.Redeem(c.Request.Context(), body.UID, body.CouponCode)
	if errRedeem != nil {
		var reqErr *publisher.RequestError
		if errors.As(errRedeem, &reqErr) {
			log.WithError(reqErr).WithField("code", body.CouponCode).Warn("redeem: publisher unreachable")
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to reach the coupon service"})
			return
		}
		log.WithError(errRedeem).Error("redeem: unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An error occurred while redeeming the coupon"})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
