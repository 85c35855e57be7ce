package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sena-tools/coupon-relay/internal/directory"
	log "github.com/sirupsen/logrus"
)

// CouponHandler serves the coupon directory endpoints.
type CouponHandler struct {
	directory *directory.Service
}

// NewCouponHandler constructs a CouponHandler.
func NewCouponHandler(dir *directory.Service) *CouponHandler {
	return &CouponHandler{directory: dir}
}

// createCouponRequest defines the request body for adding a coupon code.
type createCouponRequest struct {
	Code string `json:"code"`
}

// List returns the active coupon codes, newest first.
func (h *CouponHandler) List(c *gin.Context) {
	codes, errList := h.directory.List(c.Request.Context())
	if errList != nil {
		log.WithError(errList).Error("coupons: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"coupons": codes})
}

// Create adds a new coupon code to the directory.
func (h *CouponHandler) Create(c *gin.Context) {
	var body createCouponRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon code"})
		return
	}
	if strings.TrimSpace(body.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon code"})
		return
	}

	coupon, errAdd := h.directory.Add(c.Request.Context(), body.Code)
	if errAdd != nil {
		log.WithError(errAdd).Error("coupons: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupon": gin.H{
		"code":      coupon.Code,
		"active":    coupon.Active,
		"createdAt": coupon.CreatedAt,
	}})
}
