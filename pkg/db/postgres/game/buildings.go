package game

import (
	"context"
	"fmt"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// BuildingRow is one building list entry with its player-assigned nickname,
// empty when none is set.
type BuildingRow struct {
	models.BuildingState
	Nickname string `json:"nickname,omitempty"`
}

// buildingListSQL builds the count and page queries for the building list.
// Buildings are left-joined with their nicknames; a non-empty search
// filters by nickname substring.
func buildingListSQL(search string, perPage, offset int) (countQuery, listQuery string, args []any) {
	from := "FROM building_state b LEFT JOIN building_nickname_state n ON n.entity_id = b.entity_id"
	where := ""
	args = []any{}
	if search != "" {
		where = "WHERE n.nickname ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	countQuery = fmt.Sprintf("SELECT count(*) %s %s", from, where)
	listQuery = fmt.Sprintf(
		"SELECT b.entity_id, b.region, b.claim_entity_id, b.direction_index, "+
			"b.building_description_id, b.constructed_by_player_entity_id, b.interior_network_id, "+
			"coalesce(n.nickname, '') %s %s ORDER BY b.entity_id LIMIT $%d OFFSET $%d",
		from, where, len(args)+1, len(args)+2)
	args = append(args, perPage, offset)
	return countQuery, listQuery, args
}

// ListBuildings returns one page of buildings with nicknames, optionally
// filtered by nickname.
func ListBuildings(ctx context.Context, s *Store, page, perPage int, search string) (*ListPage[BuildingRow], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	countQuery, listQuery, args := buildingListSQL(search, perPage, (page-1)*perPage)

	var total int64
	if err := s.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count building_state: %w", err)
	}

	rows, err := s.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list building_state: %w", err)
	}
	defer rows.Close()

	out := make([]BuildingRow, 0, perPage)
	for rows.Next() {
		var row BuildingRow
		dest := append(models.Buildings.ScanDest(&row.BuildingState), &row.Nickname)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan building_state: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list building_state: %w", err)
	}

	return &ListPage[BuildingRow]{Rows: out, Total: total, Page: page, PerPage: perPage, Search: search}, nil
}
