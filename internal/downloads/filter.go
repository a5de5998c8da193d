package downloads

import (
	"strings"

	"github.com/debrideck/debrideck/internal/debrid"
)

// FilterByName returns the ordered subsequence of items whose name
// contains the query, case-insensitively. An empty query returns the
// input unchanged.
func FilterByName(items []debrid.TaggedDownload, query string) []debrid.TaggedDownload {
	if query == "" {
		return items
	}

	q := strings.ToLower(query)
	filtered := make([]debrid.TaggedDownload, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
