package publisher

import "strings"

// Outcome classifies a redemption attempt.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeAlreadyRedeemed Outcome = "already_redeemed"
	OutcomeExpired         Outcome = "expired"
	OutcomeInvalidCode     Outcome = "invalid_code"
	OutcomeInvalidAccount  Outcome = "invalid_account"
	OutcomeRateLimited     Outcome = "rate_limited"
	OutcomeUnknown         Outcome = "unknown_error"
)

// Publisher error codes observed across response revisions.
const (
	CodeSuccess         = 200
	CodeInvalidAccount  = 21002
	CodeRateLimited     = 24001
	CodeInvalidCoupon   = 24002
	CodeCouponExpired   = 24003
	CodeAlreadyRedeemed = 24004
)

// DefaultRewardMessage is used when a successful response carries no reward
// label.
const DefaultRewardMessage = "Reward sent to mailbox"

// fallbackErrorMessage is used when the publisher sends an unknown code with
// no message of its own.
const fallbackErrorMessage = "Failed to redeem coupon"

// errorOutcomes is the single authoritative error-code table.
var errorOutcomes = map[int]struct {
	outcome Outcome
	message string
}{
	CodeInvalidAccount:  {OutcomeInvalidAccount, "Invalid User ID"},
	CodeRateLimited:     {OutcomeRateLimited, "Rate limited (1 hour) - too many invalid attempts"},
	CodeInvalidCoupon:   {OutcomeInvalidCode, "Invalid coupon code"},
	CodeCouponExpired:   {OutcomeExpired, "Coupon expired"},
	CodeAlreadyRedeemed: {OutcomeAlreadyRedeemed, "Coupon already redeemed"},
}

// Result is a classified redemption attempt.
type Result struct {
	Outcome   Outcome
	Success   bool
	Message   string
	Reward    string
	ErrorCode int // 0 when the publisher sent no usable code
}

// Interpret maps a publisher response onto a classified result. Priority:
// success signals first, then the error-code table, then the publisher's
// own message, then a generic fallback.
func Interpret(resp *Response) Result {
	if resp == nil {
		return Result{Outcome: OutcomeUnknown, Message: fallbackErrorMessage}
	}

	if isSuccess(resp) {
		reward := resp.RewardTitle()
		if reward == "" {
			reward = DefaultRewardMessage
		}
		return Result{
			Outcome: OutcomeSuccess,
			Success: true,
			Message: "Coupon redeemed successfully!",
			Reward:  reward,
		}
	}

	code := resp.errorCodeInt()
	if entry, ok := errorOutcomes[code]; ok {
		return Result{
			Outcome:   entry.outcome,
			Message:   entry.message,
			ErrorCode: code,
		}
	}

	message := strings.TrimSpace(resp.ResultMessage)
	if message == "" {
		message = strings.TrimSpace(resp.ErrorMessage)
	}
	if message == "" {
		message = fallbackErrorMessage
	}
	return Result{
		Outcome:   OutcomeUnknown,
		Message:   message,
		ErrorCode: code,
	}
}

func isSuccess(resp *Response) bool {
	if resp.ResultCode == "200" || resp.ResultCode == "0" {
		return true
	}
	if resp.Success != nil && *resp.Success {
		return true
	}
	if code, ok := parseCode(string(resp.ErrorCode)); ok && code == CodeSuccess {
		return true
	}
	return false
}
