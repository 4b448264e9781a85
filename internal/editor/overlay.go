// Package editor tracks live user edits to map features. The pre-ranker only
// asks whether a feature was freshly created and, if so, where it is; the
// Store answers that from edit events consumed off Kafka.
package editor

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

// Status is the edit state of one feature.
type Status int

const (
	StatusUnedited Status = iota
	StatusCreated
	StatusModified
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	default:
		return "unedited"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "unedited", "":
		return StatusUnedited, nil
	case "created":
		return StatusCreated, nil
	case "modified":
		return StatusModified, nil
	case "deleted":
		return StatusDeleted, nil
	default:
		return StatusUnedited, fmt.Errorf("unknown edit status %q", s)
	}
}

// Overlay is the read side of the edit store.
type Overlay interface {
	Status(id feature.ID) Status
	// EditedGeometry returns the edited center of id. It is meaningful only
	// when Status(id) is StatusCreated.
	EditedGeometry(id feature.ID) (geo.Point, bool)
}

// NoEdits is an Overlay with no edited features.
type NoEdits struct{}

func (NoEdits) Status(feature.ID) Status                    { return StatusUnedited }
func (NoEdits) EditedGeometry(feature.ID) (geo.Point, bool) { return geo.Point{}, false }
