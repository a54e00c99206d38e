package catalog

import (
	"strconv"
	"strings"
)

// Sector is an imager scan sector
type Sector string

// Known sectors. SectorMesoscale matches both mesoscale sub-regions.
const (
	SectorNone      Sector = ""
	SectorCONUS     Sector = "C"
	SectorFullDisk  Sector = "F"
	SectorMesoscale Sector = "M"
	SectorMeso1     Sector = "M1"
	SectorMeso2     Sector = "M2"
)

// IsSubRegion is true for the numbered mesoscale sectors
func (s Sector) IsSubRegion() bool {
	return s == SectorMeso1 || s == SectorMeso2
}

// Family drops the sub-region number: M1 and M2 both belong to M
func (s Sector) Family() Sector {
	if s.IsSubRegion() {
		return SectorMesoscale
	}
	return s
}

// MinBand and MaxBand bound the imager channel numbers
const (
	MinBand = 1
	MaxBand = 16
)

// Query narrows a listing before time selection
type Query struct {
	Sector Sector
	Bands  []int
}

// Validate rejects unknown sectors and out-of-range bands
func (q Query) Validate() error {
	switch q.Sector {
	case SectorNone, SectorCONUS, SectorFullDisk, SectorMesoscale, SectorMeso1, SectorMeso2:
	default:
		return &InvalidQueryError{Field: "domain", Value: string(q.Sector)}
	}
	for _, band := range q.Bands {
		if band < MinBand || band > MaxBand {
			return &InvalidQueryError{Field: "band", Value: strconv.Itoa(band)}
		}
	}
	return nil
}

// Apply runs the band filter and then the mesoscale sub-region filter
func (q Query) Apply(records []ObservationRecord) []ObservationRecord {
	return FilterSector(FilterBands(records, q.Bands), q.Sector)
}

// FilterBands keeps records whose band is in bands. With no bands requested,
// or a listing of a product that has no bands, every record is kept.
func FilterBands(records []ObservationRecord, bands []int) []ObservationRecord {
	if len(bands) == 0 || !anyBanded(records) {
		return append([]ObservationRecord{}, records...)
	}
	wanted := make(map[int]bool, len(bands))
	for _, b := range bands {
		wanted[b] = true
	}

	out := make([]ObservationRecord, 0, len(records))
	for _, r := range records {
		if wanted[r.Band] {
			out = append(out, r)
		}
	}
	return out
}

// FilterSector keeps records of one mesoscale sub-region. The sub-region is
// only recorded in the file name ("...M1-M6..."), so this is a substring
// match on the path. Other sectors are selected by product name upstream and
// pass through unchanged.
func FilterSector(records []ObservationRecord, sector Sector) []ObservationRecord {
	if !sector.IsSubRegion() {
		return append([]ObservationRecord{}, records...)
	}
	marker := string(sector) + "-M"
	out := make([]ObservationRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.Path, marker) {
			out = append(out, r)
		}
	}
	return out
}

func anyBanded(records []ObservationRecord) bool {
	for _, r := range records {
		if r.HasBand() {
			return true
		}
	}
	return false
}
