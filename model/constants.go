package model

// TimeFormat is the format used for every time written into a result
const TimeFormat = "2006-01-02T15:04:05.9Z07:00" // time.RFC3339 with tenths, as GOES file names carry them

// FixedGridCRS names the projection-plane coordinate system of field-of-view
// polygons: meters from the sub-satellite point, scaled by the satellite height
const FixedGridCRS = "goes-fixed-grid"
