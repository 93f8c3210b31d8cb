package files

import (
	"fmt"
	"strings"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/server/models"
)

const selectColumns = `id, name, type, extension, url, size, owner, account_id, users, bucket_file_id, created_at, updated_at`

// sortColumns maps wire-format sort fields to columns. Anything outside
// this set is rejected with ErrInvalidSortField.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"size":      "size",
	"type":      "type",
	"extension": "extension",
}

// buildListQuery is the single choke point through which every file SELECT
// is composed. The visibility predicate on the principal is mandatory here
// and must never be duplicated or bypassed elsewhere: a file is visible iff
// the principal owns it, shares its account namespace, or appears in its
// grant list.
func buildListQuery(principal models.Principal, opts ListOptions) (string, []any, error) {
	if principal.ID == "" && principal.AccountID == "" && principal.Email == "" {
		return "", nil, common.ErrUnauthorized
	}

	var sb strings.Builder
	args := []any{principal.ID, principal.AccountID, principal.Email}

	sb.WriteString(`SELECT ` + selectColumns + ` FROM files WHERE (owner = $1 OR account_id = $2 OR jsonb_exists(users, $3))`)

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			args = append(args, string(t))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ", ") + ")")
	}

	if opts.Search != "" {
		args = append(args, opts.Search)
		sb.WriteString(fmt.Sprintf(" AND name ILIKE '%%' || $%d || '%%'", len(args)))
	}

	sort := opts.Sort
	if sort.Field == "" {
		sort = DefaultSort
	}
	column, ok := sortColumns[sort.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", common.ErrInvalidSortField, sort.Field)
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	sb.WriteString(" ORDER BY " + column + " " + direction)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	return sb.String(), args, nil
}
