package game

import (
	"context"
	"fmt"
	"strings"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// LoadByRegion loads every persisted row for (entity type, region) into a map
// keyed by primary key. This is the "currently known" set the snapshot
// reconciler diffs against.
func LoadByRegion[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T], region string) (map[models.Key]T, error) {
	rows, err := s.Query(ctx, tbl.SelectByRegionSQL(), region)
	if err != nil {
		return nil, fmt.Errorf("load %s by region %s: %w", tbl.Name, region, err)
	}
	defer rows.Close()

	known := make(map[models.Key]T)
	for rows.Next() {
		var row T
		if err := rows.Scan(tbl.ScanDest(&row)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl.Name, err)
		}
		known[row.PrimaryKey()] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s by region %s: %w", tbl.Name, region, err)
	}

	return known, nil
}

// ListPage is one page of a list query.
type ListPage[T any] struct {
	Rows    []T    `json:"rows"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Search  string `json:"search,omitempty"`
}

// List returns one page of an entity table ordered by primary key.
// searchColumn may be empty; when set, search filters with ILIKE.
func List[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T], page, perPage int, searchColumn, search string) (*ListPage[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	where := ""
	args := []any{}
	if searchColumn != "" && search != "" {
		where = fmt.Sprintf("WHERE %s ILIKE $1", searchColumn)
		args = append(args, "%"+search+"%")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s %s", tbl.Name, where)
	if err := s.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", tbl.Name, err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s LIMIT $%d OFFSET $%d",
		strings.Join(models.ColumnNames(tbl.Columns), ", "),
		tbl.Name, where, strings.Join(tbl.KeyColumns, ", "),
		len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl.Name, err)
	}
	defer rows.Close()

	out := make([]T, 0, perPage)
	for rows.Next() {
		var row T
		if err := rows.Scan(tbl.ScanDest(&row)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl.Name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl.Name, err)
	}

	return &ListPage[T]{Rows: out, Total: total, Page: page, PerPage: perPage, Search: search}, nil
}

// CountByRegion returns row counts grouped by region for one entity table.
// Used to seed the region gauges at startup.
func CountByRegion[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T]) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT region, count(*) FROM %s GROUP BY region", tbl.Name)
	rows, err := s.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count %s by region: %w", tbl.Name, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var region string
		var n int64
		if err := rows.Scan(&region, &n); err != nil {
			return nil, err
		}
		counts[region] = n
	}
	return counts, rows.Err()
}
