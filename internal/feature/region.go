package feature

import "github.com/comfortlab/comfortcast/internal/domain"

// RegionDeriver maps station identifiers to coarse region, metro, and coastal
// flags via configured lookup tables. The mapping is a deliberately
// approximate heuristic over the station numbering scheme.
type RegionDeriver struct {
	metro        map[string]struct{}
	coastal      map[string]struct{}
	digitRegions map[string]string
}

func NewRegionDeriver(cfg Config) *RegionDeriver {
	return &RegionDeriver{
		metro:        stringSet(cfg.MetroStations),
		coastal:      stringSet(cfg.CoastalStations),
		digitRegions: cfg.DigitRegions,
	}
}

// Derive populates the region features of a single row in place.
func (d *RegionDeriver) Derive(row *domain.FeatureRow) {
	id := row.StationID
	if _, ok := d.metro[id]; ok {
		row.IsMetroArea = 1
	}
	if _, ok := d.coastal[id]; ok {
		row.IsCoastal = 1
	}
	row.Region = d.regionOf(id)
}

// regionOf resolves the region from the first character of the station id.
// Empty or non-mapped leading characters become "unknown".
func (d *RegionDeriver) regionOf(id string) string {
	if id == "" {
		return domain.RegionUnknown
	}
	if region, ok := d.digitRegions[id[:1]]; ok {
		return region
	}
	return domain.RegionUnknown
}
