package preranker

import (
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/config"
)

const (
	DefaultBatchSize              = 100
	DefaultLimit                  = 1000
	DefaultPedestrianRadiusMeters = 2500.0
)

// Params is the per-query configuration snapshot.
type Params struct {
	// AccuratePivotCenter is the point distances are measured from.
	AccuratePivotCenter geo.Point `json:"pivot"`
	// Scale is the map zoom level of the query.
	Scale int `json:"scale,omitempty"`
	// Position is the user's location, if known.
	Position *geo.Point `json:"position,omitempty"`
	Viewport geo.Rect   `json:"viewport"`
	// MinDistanceOnMap is the declutter separation on the Mercator plane.
	MinDistanceOnMap  geo.Point `json:"min_distance_on_map"`
	NumQueryTokens    int       `json:"num_query_tokens,omitempty"`
	ViewportSearch    bool      `json:"viewport_search,omitempty"`
	CategorialRequest bool      `json:"categorial_request,omitempty"`

	// BatchSize bounds each criterion of the selector.
	BatchSize int `json:"batch_size,omitempty"`
	// Limit caps the number of candidates sent downstream per query.
	Limit int `json:"limit,omitempty"`

	RankWeight             float64 `json:"rank_weight,omitempty"`
	PopularityWeight       float64 `json:"popularity_weight,omitempty"`
	PedestrianRadiusMeters float64 `json:"pedestrian_radius_meters,omitempty"`
}

// ParamsFromConfig seeds Params with the configured defaults.
func ParamsFromConfig(cfg config.PreRankConfig) Params {
	return Params{
		MinDistanceOnMap:       geo.Point{X: cfg.MinDistanceOnMap, Y: cfg.MinDistanceOnMap},
		BatchSize:              cfg.BatchSize,
		Limit:                  cfg.Limit,
		RankWeight:             cfg.RankWeight,
		PopularityWeight:       cfg.PopularityWeight,
		PedestrianRadiusMeters: cfg.PedestrianRadiusMeters,
	}
}

// WithDefaults fills unset tunables.
func (p Params) WithDefaults() Params {
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.RankWeight, p.PopularityWeight = max(p.RankWeight, 0), max(p.PopularityWeight, 0)
	if p.RankWeight == 0 && p.PopularityWeight == 0 {
		p.RankWeight, p.PopularityWeight = 1, 1
	}
	if p.PedestrianRadiusMeters <= 0 {
		p.PedestrianRadiusMeters = DefaultPedestrianRadiusMeters
	}
	return p
}
