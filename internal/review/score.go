package review

import "encoding/json"

// ParseScore digs a session score out of a finish response body. Backends
// have shipped the score at several locations over time, so the lookup walks
// them in precedence order:
//
//	data.score > data.result.score > score
//
// A missing or unparseable body yields 0 rather than an error; a score is
// decorative next to the transcript itself.
func ParseScore(body []byte) int {
	if len(body) == 0 {
		return 0
	}

	var probe struct {
		Score *json.Number `json:"score"`
		Data  *struct {
			Score  *json.Number `json:"score"`
			Result *struct {
				Score *json.Number `json:"score"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return 0
	}

	if probe.Data != nil {
		if n := numberToScore(probe.Data.Score); n != nil {
			return *n
		}
		if probe.Data.Result != nil {
			if n := numberToScore(probe.Data.Result.Score); n != nil {
				return *n
			}
		}
	}
	if n := numberToScore(probe.Score); n != nil {
		return *n
	}
	return 0
}

func numberToScore(n *json.Number) *int {
	if n == nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}
