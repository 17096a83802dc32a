package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	meta := GetMeta(&Params{Page: 1, Limit: 20}, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.EqualValues(t, 45, meta.Total)
	assert.True(t, meta.HasNext)
	assert.False(t, meta.HasPrev)

	meta = GetMeta(&Params{Page: 3, Limit: 20}, 45)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(&Params{Page: 1, Limit: 20}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b"}
	resp := NewResponse(data, &Params{Page: 2, Limit: 2}, 5)
	assert.Equal(t, data, resp.Data)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
