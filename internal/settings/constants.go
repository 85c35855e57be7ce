package settings

// DB config keys and defaults for runtime tunables.
const (
	// RedeemDelayMillisKey controls the pause between batch redemption calls.
	RedeemDelayMillisKey = "REDEEM_DELAY_MS"
	// CouponCacheTTLSecondsKey controls the directory cache TTL in seconds.
	CouponCacheTTLSecondsKey = "COUPON_CACHE_TTL_SECONDS"
	// PublisherLanguageKey overrides the language code sent to the publisher.
	PublisherLanguageKey = "PUBLISHER_LANG"

	// DefaultRedeemDelayMillis is the fallback inter-request delay.
	DefaultRedeemDelayMillis = 1500
	// DefaultCouponCacheTTLSeconds is the fallback directory cache TTL.
	DefaultCouponCacheTTLSeconds = 3600
	// DefaultPublisherLanguage is the fallback language code.
	DefaultPublisherLanguage = "en"
)
