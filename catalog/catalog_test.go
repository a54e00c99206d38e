package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2021, 1, 1, 17, 0, 0, 0, time.UTC)

func mockRecord(start time.Time, band int) ObservationRecord {
	return ObservationRecord{
		Path:      fmt.Sprintf("noaa-goes17/ABI-L1b-RadC/%s/C%02d", start.Format(time.RFC3339), band),
		Satellite: "noaa-goes17",
		Product:   "ABI-L1b-RadC",
		Mode:      6,
		Band:      band,
		Start:     start,
		End:       start.Add(60 * time.Second),
		Creation:  start.Add(90 * time.Second),
	}
}

func TestParseRecord_L1bBand(t *testing.T) {
	// Mock
	path := "noaa-goes16/ABI-L1b-RadC/2020/001/00/OR_ABI-L1b-RadC-M6C01_G16_s20200010001164_e20200010003537_c20200010004081.nc"

	// Tested code
	record, err := ParseRecord(path)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, path, record.Path)
	assert.Equal(t, "noaa-goes16", record.Satellite)
	assert.Equal(t, "ABI-L1b-RadC", record.Product)
	assert.Equal(t, 6, record.Mode)
	assert.Equal(t, 1, record.Band)
	assert.Equal(t, SectorCONUS, record.Sector())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 1, 16, 400000000, time.UTC), record.Start)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 3, 53, 700000000, time.UTC), record.End)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 4, 8, 100000000, time.UTC), record.Creation)
	assert.Equal(t, "OR_ABI-L1b-RadC-M6C01_G16_s20200010001164_e20200010003537_c20200010004081.nc", record.FileName())
}

func TestParseRecord_MesoscaleAndLightning(t *testing.T) {
	meso, err := ParseRecord("OR_ABI-L2-MCMIPM1-M6_G18_s20222001200273_e20222001200331_c20222001200408.nc")
	assert.Nil(t, err)
	assert.Equal(t, "ABI-L2-MCMIPM1", meso.Product)
	assert.Equal(t, "noaa-goes18", meso.Satellite)
	assert.Equal(t, 6, meso.Mode)
	assert.False(t, meso.HasBand())
	assert.Equal(t, SectorMeso1, meso.Sector())
	assert.Equal(t, time.Date(2022, 7, 19, 12, 0, 27, 300000000, time.UTC), meso.Start)

	glm, err := ParseRecord("noaa-goes16/GLM-L2-LCFA/2020/001/00/OR_GLM-L2-LCFA_G16_s20200010000000_e20200010000200_c20200010000227.nc")
	assert.Nil(t, err)
	assert.Equal(t, "GLM-L2-LCFA", glm.Product)
	assert.Equal(t, 0, glm.Mode)
	assert.Equal(t, SectorNone, glm.Sector())
	assert.Equal(t, 20*time.Second, glm.End.Sub(glm.Start))
}

func TestParseRecord_Malformed(t *testing.T) {
	for _, path := range []string{
		"OR_ABI-L2-MCMIPC-M6_G16_sBAD_e20200010003537_c20200010004081.nc",
		"OR_ABI-L2-MCMIPC-M6_G16_s202000100011_e20200010003537_c20200010004081.nc",
		"OR_ABI-L2-MCMIPC-M6_G16_s20200010001164_x20200010003537_c20200010004081.nc",
		"OR_ABI-L2-MCMIPC-M6_G16_s20200010001164_e20200010003537_c2020001000408.1.nc",
		"OR_ABI-L2-MCMIPC-M6_G16_s20200010005164_e20200010003537_c20200010004081.nc",
		"index.nc",
	} {
		_, err := ParseRecord(path)
		_, ok := err.(*MalformedEntryError)
		assert.True(t, ok, path)
	}
}

func TestParseListing_AbortsOnMalformed(t *testing.T) {
	// Mock
	listing := []string{
		"noaa-goes16/ABI-L2-MCMIPC/2020/001/00/OR_ABI-L2-MCMIPC-M6_G16_s20200010001164_e20200010003537_c20200010004081.nc",
		"noaa-goes16/ABI-L2-MCMIPC/2020/001/00/OR_ABI-L2-MCMIPC-M6_G16_s2020001000X164_e20200010008537_c20200010009081.nc",
		"noaa-goes16/ABI-L2-MCMIPC/2020/001/00/OR_ABI-L2-MCMIPC-M6_G16_s20200010011164_e20200010013537_c20200010014081.nc",
	}

	// Tested code
	records, err := ParseListing(listing)

	// Asserts
	assert.Nil(t, records)
	malformed, ok := err.(*MalformedEntryError)
	assert.True(t, ok)
	assert.Equal(t, listing[1], malformed.Path)
	assert.Equal(t, "start", malformed.Field)
}

func TestParseListing_SkipsNonDataAndDuplicates(t *testing.T) {
	path := "noaa-goes16/ABI-L2-MCMIPC/2020/001/00/OR_ABI-L2-MCMIPC-M6_G16_s20200010001164_e20200010003537_c20200010004081.nc"
	records, err := ParseListing([]string{path, "noaa-goes16/ABI-L2-MCMIPC/2020/001/00/", "noaa-goes16/index.html", path})

	assert.Nil(t, err)
	assert.Len(t, records, 1)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "20200010001164", FormatTimestamp(time.Date(2020, 1, 1, 0, 1, 16, 400000000, time.UTC)))
}

func TestSelectRange_Exclusivity(t *testing.T) {
	// Mock
	before := mockRecord(t0.Add(-30*time.Second), 1) // ends inside the window
	inside := mockRecord(t0.Add(5*time.Minute), 1)
	after := mockRecord(t0.Add(59*time.Minute+30*time.Second), 1) // ends past the window

	// Tested code
	selection := SelectRange([]ObservationRecord{before, inside, after}, t0, t0.Add(time.Hour))

	// Asserts
	assert.Equal(t, Selection{inside}, selection)
}

func TestSelectRange_Inclusive(t *testing.T) {
	exact := mockRecord(t0, 1)
	selection := SelectRange([]ObservationRecord{exact}, t0, exact.End)
	assert.Len(t, selection, 1)
}

func TestSelectNearest_TieBreakEarlier(t *testing.T) {
	// Mock
	early := mockRecord(t0.Add(-5*time.Minute), 1)
	late := mockRecord(t0.Add(5*time.Minute), 1)

	// Tested code
	forward := SelectNearest([]ObservationRecord{late, early}, t0, time.Hour)
	backward := SelectNearest([]ObservationRecord{early, late}, t0, time.Hour)

	// Asserts
	assert.Equal(t, Selection{early}, forward)
	assert.Equal(t, Selection{early}, backward)
}

func TestSelectNearest_MultiBandGrouping(t *testing.T) {
	// Mock
	records := []ObservationRecord{
		mockRecord(t0, 1),
		mockRecord(t0, 2),
		mockRecord(t0, 3),
		mockRecord(t0.Add(5*time.Minute), 1),
		mockRecord(t0.Add(-5*time.Minute), 2),
	}

	// Tested code
	selection := SelectNearest(records, t0, time.Hour)

	// Asserts
	assert.Len(t, selection, 3)
	for i, r := range selection {
		assert.Equal(t, t0, r.Start)
		assert.Equal(t, i+1, r.Band)
	}
	assert.Equal(t, t0, selection.Start())
}

func TestSelectNearest_Window(t *testing.T) {
	far := mockRecord(t0.Add(2*time.Hour), 1)
	closer := mockRecord(t0.Add(40*time.Minute), 1)

	selection := SelectNearest([]ObservationRecord{far, closer}, t0, time.Hour)
	assert.Equal(t, Selection{closer}, selection)

	none := SelectNearest([]ObservationRecord{far}, t0, time.Hour)
	assert.True(t, none.NoData())
	assert.NotNil(t, none)
}

func TestSelectNearest_EmptyCatalog(t *testing.T) {
	selection := SelectNearest([]ObservationRecord{}, t0, time.Hour)
	assert.True(t, selection.NoData())
	assert.Equal(t, time.Time{}, selection.Start())

	nilSelection := SelectNearest(nil, t0, time.Hour)
	assert.True(t, nilSelection.NoData())
}

func TestSelectLatest(t *testing.T) {
	records := []ObservationRecord{
		mockRecord(t0, 1),
		mockRecord(t0.Add(10*time.Minute), 2),
		mockRecord(t0.Add(10*time.Minute), 1),
		mockRecord(t0.Add(5*time.Minute), 1),
	}

	selection := SelectLatest(records)

	assert.Len(t, selection, 2)
	assert.Equal(t, t0.Add(10*time.Minute), selection.Start())
	assert.True(t, SelectLatest(nil).NoData())
}

func TestSortByStart(t *testing.T) {
	records := []ObservationRecord{
		mockRecord(t0.Add(time.Minute), 1),
		mockRecord(t0, 2),
		mockRecord(t0, 1),
	}

	SortByStart(records)

	assert.Equal(t, t0, records[0].Start)
	assert.Equal(t, 1, records[0].Band)
	assert.Equal(t, 2, records[1].Band)
	assert.Equal(t, t0.Add(time.Minute), records[2].Start)
}

func TestFilterBands(t *testing.T) {
	// Mock
	records := []ObservationRecord{mockRecord(t0, 1), mockRecord(t0, 2), mockRecord(t0.Add(24*time.Hour), 2)}

	// Tested code
	oneBand := FilterBands(records, []int{1})
	allBands := FilterBands(records, nil)
	unbanded := FilterBands([]ObservationRecord{{Path: "glm", Start: t0, End: t0.Add(time.Second)}}, []int{1})

	// Asserts
	assert.Len(t, oneBand, 1)
	assert.Equal(t, 1, oneBand[0].Band)
	assert.Len(t, allBands, 3)
	assert.Len(t, unbanded, 1)
}

func TestFilterBands_BeforeNearest(t *testing.T) {
	// Band 2 exists only a day later; with band 2 requested nothing is near t0.
	records := []ObservationRecord{mockRecord(t0, 1), mockRecord(t0.Add(24*time.Hour), 2)}

	q := Query{Bands: []int{2}}
	assert.True(t, SelectNearest(q.Apply(records), t0, time.Hour).NoData())

	q = Query{Bands: []int{1, 2}}
	assert.Len(t, SelectNearest(q.Apply(records), t0, time.Hour), 1)
}

func TestFilterSector(t *testing.T) {
	// Mock
	m1 := ObservationRecord{Path: "noaa-goes16/ABI-L2-MCMIPM/2022/200/12/OR_ABI-L2-MCMIPM1-M6_G16_s20222001200273_e20222001200331_c20222001200408.nc"}
	m2 := ObservationRecord{Path: "noaa-goes16/ABI-L2-MCMIPM/2022/200/12/OR_ABI-L2-MCMIPM2-M6_G16_s20222001200273_e20222001200331_c20222001200408.nc"}
	records := []ObservationRecord{m1, m2}

	// Tested code & Asserts
	assert.Equal(t, []ObservationRecord{m1}, FilterSector(records, SectorMeso1))
	assert.Equal(t, []ObservationRecord{m2}, FilterSector(records, SectorMeso2))
	assert.Len(t, FilterSector(records, SectorMesoscale), 2)
	assert.Len(t, FilterSector(records, SectorNone), 2)
}

func TestQuery_Validate(t *testing.T) {
	assert.Nil(t, Query{Sector: SectorMeso2, Bands: []int{1, 16}}.Validate())
	assert.Nil(t, Query{}.Validate())

	err := Query{Sector: Sector("M3")}.Validate()
	invalid, ok := err.(*InvalidQueryError)
	assert.True(t, ok)
	assert.Equal(t, "domain", invalid.Field)

	err = Query{Bands: []int{0}}.Validate()
	invalid, ok = err.(*InvalidQueryError)
	assert.True(t, ok)
	assert.Equal(t, "band", invalid.Field)
	assert.NotNil(t, Query{Bands: []int{17}}.Validate())
}

func TestSector_Family(t *testing.T) {
	assert.Equal(t, SectorMesoscale, SectorMeso1.Family())
	assert.Equal(t, SectorCONUS, SectorCONUS.Family())
	assert.True(t, SectorMeso2.IsSubRegion())
	assert.False(t, SectorMesoscale.IsSubRegion())
}
