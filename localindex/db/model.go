package db

import (
	"time"

	"github.com/venicegeo/bf-goes-broker/catalog"
)

// ObservationRow is one row of the observations table
type ObservationRow struct {
	Path         string
	Satellite    string
	Product      string
	Sector       string
	Mode         int
	Band         int
	StartTime    time.Time
	EndTime      time.Time
	CreationTime time.Time
}

// NewObservationRow flattens a record for storage
func NewObservationRow(record catalog.ObservationRecord) ObservationRow {
	return ObservationRow{
		Path:         record.Path,
		Satellite:    record.Satellite,
		Product:      record.Product,
		Sector:       string(record.Sector()),
		Mode:         record.Mode,
		Band:         record.Band,
		StartTime:    record.Start.UTC(),
		EndTime:      record.End.UTC(),
		CreationTime: record.Creation.UTC(),
	}
}

func (row ObservationRow) values() []interface{} {
	return []interface{}{
		row.Path, row.Satellite, row.Product, row.Sector, row.Mode, row.Band,
		row.StartTime, row.EndTime, row.CreationTime,
	}
}
