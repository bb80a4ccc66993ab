package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildingListSQLWithoutSearch(t *testing.T) {
	count, list, args := buildingListSQL("", 50, 0)

	assert.NotContains(t, count, "WHERE")
	assert.Contains(t, list, "LEFT JOIN building_nickname_state n ON n.entity_id = b.entity_id")
	assert.Contains(t, list, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{50, 0}, args)
}

func TestBuildingListSQLSearchesNickname(t *testing.T) {
	count, list, args := buildingListSQL("keep", 25, 25)

	assert.Contains(t, count, "WHERE n.nickname ILIKE $1")
	assert.Contains(t, list, "WHERE n.nickname ILIKE $1")
	assert.Contains(t, list, "LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{"%keep%", 25, 25}, args)
}
