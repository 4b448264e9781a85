package partition

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource()
	bounds := geo.NewRect(geo.Point{X: 0, Y: 0}, geo.Point{X: 1, Y: 1})
	src.Put("Belarus", &Snapshot{
		Bounds:   bounds,
		Sections: map[Tag][]byte{TagSearchRanks: {1, 2, 3}},
	})

	h, err := src.Acquire(ctx, "Belarus")
	require.NoError(t, err)
	assert.Equal(t, bounds, h.Bounds())

	data, err := h.Content().Section(ctx, TagSearchRanks)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = h.Content().Section(ctx, TagCenters)
	assert.ErrorIs(t, err, apperrors.ErrTableMissing)

	h.Release()
	h.Release()
	acquired, released := src.Stats()
	assert.Equal(t, int64(1), acquired)
	assert.Equal(t, int64(1), released)

	_, err = src.Acquire(ctx, "Atlantis")
	assert.ErrorIs(t, err, apperrors.ErrPartitionUnavailable)

	src.Remove("Belarus")
	_, err = src.Acquire(ctx, "Belarus")
	assert.ErrorIs(t, err, apperrors.ErrPartitionUnavailable)
}

func TestCentersEncoding(t *testing.T) {
	centers := []geo.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	section := EncodeCenters(centers, []bool{true, false, true})
	require.Len(t, section, 3*CenterRecordSize)

	p, ok := DecodeCenter(section, 0)
	assert.True(t, ok)
	assert.Equal(t, geo.Point{X: 1, Y: 2}, p)

	_, ok = DecodeCenter(section, 1)
	assert.False(t, ok)

	p, ok = DecodeCenter(section, 2)
	assert.True(t, ok)
	assert.Equal(t, geo.Point{X: 5, Y: 6}, p)

	_, ok = DecodeCenter(section, 3)
	assert.False(t, ok)

	all := EncodeCenters(centers, nil)
	p, ok = DecodeCenter(all, 1)
	assert.True(t, ok)
	assert.Equal(t, geo.Point{X: 3, Y: 4}, p)
}
