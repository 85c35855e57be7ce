// Package httpapi exposes the relay's HTTP surface.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sena-tools/coupon-relay/internal/directory"
	"github.com/sena-tools/coupon-relay/internal/redeem"
)

// NewRouter builds the gin engine with all relay routes registered.
func NewRouter(dir *directory.Service, redeemSvc *redeem.Service) *gin.Engine {
	engine := gin.New()
	engine.Use(RequestLogger(), gin.Recovery())

	coupons := NewCouponHandler(dir)
	redemption := NewRedeemHandler(redeemSvc)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/coupons", coupons.List)
	engine.POST("/coupons", coupons.Create)
	engine.POST("/redeem", redemption.Redeem)

	return engine
}
