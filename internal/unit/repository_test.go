package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltered_EscapesLikeWildcards(t *testing.T) {
	r := &pgxRepository{}

	sql, args, err := r.filtered(Filter{Keyword: "100%_off", County: "Cluj_"}, "u.id").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "u.name ILIKE")
	assert.Contains(t, args, `Cluj\_`)
	assert.Contains(t, args, `%100\%\_off%`)
	assert.NotContains(t, args, "%100%_off%")
}
