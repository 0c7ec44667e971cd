package counters

import (
	"encoding/json"
	"strings"
)

// All is the wildcard list entry matching every element.
const All = "all"

// Criteria is the user supplied filter for one extraction.
type Criteria struct {
	Hosts    []string
	Services []string
	Metrics  []string
}

// SplitList turns a comma separated flag value into a cleaned name list.
// An empty value or the literal "all" matches everything.
func SplitList(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func matchesAll(names []string) bool {
	return len(names) == 0 || (len(names) == 1 && names[0] == All)
}

// WantsMetric reports whether the given metric name passes the filter.
func (c Criteria) WantsMetric(name string) bool {
	if matchesAll(c.Metrics) {
		return true
	}
	for _, m := range c.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// nameClause builds the Eve "where" condition for a name list: a single name
// matches by substring regex, several names match exactly with $in.
func nameClause(names []string) map[string]any {
	if len(names) == 1 {
		return map[string]any{"$regex": ".*" + names[0] + ".*"}
	}
	return map[string]any{"$in": names}
}

// encodeWhere serializes a where clause the way Eve expects it, as a JSON
// string query parameter. Map keys marshal in sorted order, keeping request
// URLs deterministic.
func encodeWhere(clause map[string]any) (string, error) {
	b, err := json.Marshal(clause)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeProjection serializes the field projection of a query.
func encodeProjection(fields ...string) string {
	proj := make(map[string]int, len(fields))
	for _, f := range fields {
		proj[f] = 1
	}
	b, _ := json.Marshal(proj)
	return string(b)
}
