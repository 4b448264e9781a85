package partition

import (
	"encoding/binary"
	"math"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

// CenterRecordSize is the size of one entry of a centers section: two
// little-endian float64 coordinates. An entry whose X is NaN has no center.
const CenterRecordSize = 16

// EncodeCenters packs centers into a centers section. Indices missing from
// present get a NaN record.
func EncodeCenters(centers []geo.Point, present []bool) []byte {
	buf := make([]byte, len(centers)*CenterRecordSize)
	for i, p := range centers {
		x, y := p.X, p.Y
		if present != nil && !present[i] {
			x, y = math.NaN(), math.NaN()
		}
		binary.LittleEndian.PutUint64(buf[i*CenterRecordSize:], math.Float64bits(x))
		binary.LittleEndian.PutUint64(buf[i*CenterRecordSize+8:], math.Float64bits(y))
	}
	return buf
}

// DecodeCenter reads entry index from a centers section.
func DecodeCenter(section []byte, index uint32) (geo.Point, bool) {
	off := int(index) * CenterRecordSize
	if off < 0 || off+CenterRecordSize > len(section) {
		return geo.Point{}, false
	}
	x := math.Float64frombits(binary.LittleEndian.Uint64(section[off:]))
	y := math.Float64frombits(binary.LittleEndian.Uint64(section[off+8:]))
	if math.IsNaN(x) || math.IsNaN(y) {
		return geo.Point{}, false
	}
	return geo.Point{X: x, Y: y}, true
}
