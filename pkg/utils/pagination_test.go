package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{3, 1, 3},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.limit), "total=%d limit=%d", c.total, c.limit)
	}
}

func TestNormalize(t *testing.T) {
	p := Pagination{}
	p.Normalize(10, 50)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)

	p = Pagination{Page: 3, Limit: 500}
	p.Normalize(10, 50)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)

	offset, limit := (&Pagination{Page: 2, Limit: 20}).GetPageOffset()
	assert.Equal(t, 20, offset)
	assert.Equal(t, 20, limit)
}

func TestNormalizeHugePage(t *testing.T) {
	for _, limit := range []int{1, 7, 50, 100} {
		p := Pagination{Page: math.MaxInt, Limit: limit}
		offset, got := p.GetPageOffset()
		assert.Equal(t, limit, got)
		assert.GreaterOrEqual(t, offset, 0, "limit=%d", limit)
		assert.LessOrEqual(t, offset, MaxOffset, "limit=%d", limit)
		assert.Equal(t, MaxOffset/limit+1, p.Page)
	}
}

func TestMeta(t *testing.T) {
	p := Pagination{Page: 1, Limit: 1}
	meta := p.Meta(3)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
}
