package export

import (
	"encoding/json"
	"strings"
)

// priceBreak is one quantity price break as stored in the database: a JSON
// array of {qFrom, qTo, price} objects per component.
type priceBreak struct {
	QFrom *json.Number `json:"qFrom"`
	QTo   *json.Number `json:"qTo"`
	Price json.Number  `json:"price"`
}

// flattenPrice renders the price break JSON as "qFrom-qTo:price" segments
// joined by commas, e.g. "1-9:0.05,10-:0.04". Null or zero quantity bounds
// are left empty, matching the historical export format.
func flattenPrice(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var breaks []priceBreak
	if err := json.Unmarshal([]byte(raw), &breaks); err != nil {
		return "", err
	}

	segments := make([]string, 0, len(breaks))
	for _, b := range breaks {
		var sb strings.Builder
		if n := numberOrEmpty(b.QFrom); n != "" {
			sb.WriteString(n)
		}
		sb.WriteString("-")
		if n := numberOrEmpty(b.QTo); n != "" {
			sb.WriteString(n)
		}
		sb.WriteString(":")
		sb.WriteString(b.Price.String())
		segments = append(segments, sb.String())
	}

	return strings.Join(segments, ","), nil
}

func numberOrEmpty(n *json.Number) string {
	if n == nil || n.String() == "0" {
		return ""
	}
	return n.String()
}
