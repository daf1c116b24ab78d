package domain

import "strings"

// FilterTripsByName retains trips whose name contains query as a
// case-insensitive substring, preserving relative order. An empty query
// matches everything.
func FilterTripsByName(trips []Trip, query string) []Trip {
	if query == "" {
		return trips
	}
	q := strings.ToLower(query)
	var out []Trip
	for _, t := range trips {
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	return out
}
