package files

import (
	"strings"

	"github.com/avoronov/storebox/internal/filex"
)

// SortSpec is the parsed form of a sort key. Field is carried verbatim from
// the caller; the store maps it to a column and rejects unknown names.
type SortSpec struct {
	Field      string
	Descending bool
}

// DefaultSort orders by creation time, newest first.
var DefaultSort = SortSpec{Field: "createdAt", Descending: true}

// ParseSort resolves a wire-format sort key into a SortSpec.
//
// The symbolic aliases "latest" and "oldest" map to creation time descending
// and ascending. Any other value is split on "-" into field and direction,
// with the direction defaulting to descending when omitted. An empty key
// yields DefaultSort.
func ParseSort(key string) SortSpec {
	switch key {
	case "":
		return DefaultSort
	case "latest":
		return SortSpec{Field: "createdAt", Descending: true}
	case "oldest":
		return SortSpec{Field: "createdAt", Descending: false}
	}

	field, direction, found := strings.Cut(key, "-")
	if !found {
		return SortSpec{Field: field, Descending: true}
	}
	return SortSpec{Field: field, Descending: direction != "asc"}
}

// ListOptions narrows and orders a principal-scoped file listing. The zero
// value lists everything visible to the principal, newest first.
type ListOptions struct {
	// Types restricts results to the given categories when non-empty.
	Types []filex.Category
	// Search adds a substring match over the display name when non-empty.
	Search string
	Sort   SortSpec
	// Limit caps the result count when positive.
	Limit int
}
