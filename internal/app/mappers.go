package app

import (
	"strings"

	"sentitrip/internal/domain"
)

/********** alias registry for seed payloads **********/

var destinationAliases = map[string][]string{
	"name":        {"name", "place_name", "title", "destination.name"},
	"description": {"description", "summary", "details", "destination.description"},
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstNonEmptyAlias: first non-blank string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range destinationAliases[key] {
		if s, ok := lookupAny(m, p).(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// MapSeedDestination maps a loosely shaped JSON object to a Destination.
// ok is false when no name could be found.
func MapSeedDestination(m map[string]any) (d domain.Destination, ok bool) {
	d.Name = firstNonEmptyAlias(m, "name")
	d.Description = firstNonEmptyAlias(m, "description")
	return d, d.Name != ""
}

func mapDestinationView(d domain.Destination, rs []domain.Review) domain.DestinationView {
	if rs == nil {
		rs = []domain.Review{}
	}
	return domain.DestinationView{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Reviews:      rs,
		AverageScore: domain.FormatScore(domain.AggregateScore(rs)),
	}
}
