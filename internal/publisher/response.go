package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexCode is a publisher code field that has been shipped both as a JSON
// string and as a number across schema revisions.
type FlexCode string

// UnmarshalJSON accepts string, number, and null encodings.
func (c *FlexCode) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if errUnmarshal := json.Unmarshal(data, &s); errUnmarshal != nil {
			return errUnmarshal
		}
		*c = FlexCode(s)
		return nil
	}
	var n json.Number
	if errUnmarshal := json.Unmarshal(data, &n); errUnmarshal != nil {
		return errUnmarshal
	}
	*c = FlexCode(n.String())
	return nil
}

// Response covers both response schemas the publisher has shipped: the older
// resultCode/resultMessage/resultData object form and the newer
// success/errorCode/resultData array form.
type Response struct {
	ResultCode    FlexCode        `json:"resultCode"`
	ResultMessage string          `json:"resultMessage"`
	Success       *bool           `json:"success"`
	ErrorCode     FlexCode        `json:"errorCode"`
	ErrorMessage  string          `json:"errorMessage"`
	ResultData    json.RawMessage `json:"resultData"`
}

// rewardData is the reward-bearing element inside resultData.
type rewardData struct {
	RewardTitle string `json:"rewardTitle"`
}

// DecodeResponse parses a raw publisher body into a Response.
func DecodeResponse(raw []byte) (*Response, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("empty body")
	}
	var resp Response
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	if errDecode := decoder.Decode(&resp); errDecode != nil {
		return nil, fmt.Errorf("not a publisher response: %w", errDecode)
	}
	return &resp, nil
}

// RewardTitle extracts the reward label from resultData, handling both the
// object and the array shape. Empty when absent.
func (r *Response) RewardTitle() string {
	if r == nil || len(r.ResultData) == 0 {
		return ""
	}

	var single rewardData
	if errObj := json.Unmarshal(r.ResultData, &single); errObj == nil && single.RewardTitle != "" {
		return single.RewardTitle
	}

	var many []rewardData
	if errArr := json.Unmarshal(r.ResultData, &many); errArr == nil {
		for _, item := range many {
			if item.RewardTitle != "" {
				return item.RewardTitle
			}
		}
	}
	return ""
}

// errorCodeInt returns the numeric error code, preferring errorCode over
// resultCode. Zero when neither parses.
func (r *Response) errorCodeInt() int {
	if r == nil {
		return 0
	}
	if code, ok := parseCode(string(r.ErrorCode)); ok {
		return code
	}
	if code, ok := parseCode(string(r.ResultCode)); ok {
		return code
	}
	return 0
}

func parseCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var code int
	if _, errScan := fmt.Sscanf(s, "%d", &code); errScan != nil {
		return 0, false
	}
	return code, true
}
