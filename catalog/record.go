// Package catalog turns raw archive listings into observation records and
// selects the records that answer a time query. It performs no I/O.
package catalog

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ObservationRecord describes one stored observation file
type ObservationRecord struct {
	Path      string
	Satellite string
	Product   string
	Mode      int
	Band      int
	Start     time.Time
	End       time.Time
	Creation  time.Time
}

// FileName returns the last element of Path
func (r ObservationRecord) FileName() string {
	return path.Base(r.Path)
}

// HasBand is true for records of multi-band products
func (r ObservationRecord) HasBand() bool {
	return r.Band > 0
}

// Sector returns the scan sector encoded at the end of an imager product
// name (C, F, M, M1 or M2), or "" for products without one
func (r ObservationRecord) Sector() Sector {
	if !strings.HasPrefix(r.Product, "ABI") {
		return SectorNone
	}
	for _, s := range []Sector{SectorMeso1, SectorMeso2, SectorCONUS, SectorFullDisk, SectorMesoscale} {
		if strings.HasSuffix(r.Product, string(s)) {
			return s
		}
	}
	return SectorNone
}

// productPattern splits "ABI-L1b-RadM1-M6C01" into product, mode and band
var productPattern = regexp.MustCompile(`^(.+?)(?:-M(\d+)(?:C(\d{2}))?)?$`)

// GOES file names carry timestamps as <prefix>YYYYDDDHHMMSS plus a tenths
// digit, e.g. s20200010001164.
const (
	timestampLayout = "2006002150405"
	timestampDigits = len(timestampLayout)
)

// ParseRecord decodes a GOES-R file name of the form
// OR_<product>[-M<mode>[C<band>]]_G<nn>_s<time>_e<time>_c<time>.nc
// with or without leading directories.
func ParseRecord(filePath string) (ObservationRecord, error) {
	base := path.Base(filePath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	parts := strings.Split(stem, "_")
	if len(parts) < 5 {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "name", Reason: "expected <system>_<product>_<satellite>_s<start>_e<end>_c<created>"}
	}
	n := len(parts)

	record := ObservationRecord{Path: filePath}
	var err error
	if record.Start, err = parseTimestamp(parts[n-3], 's'); err != nil {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "start", Reason: err.Error()}
	}
	if record.End, err = parseTimestamp(parts[n-2], 'e'); err != nil {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "end", Reason: err.Error()}
	}
	if record.Creation, err = parseTimestamp(parts[n-1], 'c'); err != nil {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "creation", Reason: err.Error()}
	}
	if !record.Start.Before(record.End) {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "end", Reason: fmt.Sprintf("end %v is not after start %v", record.End, record.Start)}
	}

	record.Satellite = satelliteFromPlatform(parts[n-4])

	productToken := strings.Join(parts[1:n-4], "_")
	match := productPattern.FindStringSubmatch(productToken)
	if match == nil || match[1] == "" {
		return ObservationRecord{}, &MalformedEntryError{Path: filePath, Field: "product", Reason: fmt.Sprintf("unrecognized product token `%s`", productToken)}
	}
	record.Product = match[1]
	if match[2] != "" {
		record.Mode, _ = strconv.Atoi(match[2])
	}
	if match[3] != "" {
		record.Band, _ = strconv.Atoi(match[3])
	}

	return record, nil
}

// ParseListing parses every .nc object in a listing. The first malformed
// entry aborts the whole listing. Duplicate paths are collapsed.
func ParseListing(paths []string) ([]ObservationRecord, error) {
	records := make([]ObservationRecord, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if !strings.HasSuffix(p, ".nc") || seen[p] {
			continue
		}
		seen[p] = true

		record, err := ParseRecord(p)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseTimestamp(token string, prefix byte) (time.Time, error) {
	if len(token) < 1+timestampDigits || token[0] != prefix {
		return time.Time{}, fmt.Errorf("`%s` is not a %c-prefixed timestamp", token, prefix)
	}
	digits := token[1:]
	t, err := time.Parse(timestampLayout, digits[:timestampDigits])
	if err != nil {
		return time.Time{}, err
	}
	switch rest := digits[timestampDigits:]; len(rest) {
	case 0:
	case 1:
		tenths, err := strconv.Atoi(rest)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad tenths of a second in `%s`", token)
		}
		t = t.Add(time.Duration(tenths) * 100 * time.Millisecond)
	default:
		return time.Time{}, fmt.Errorf("trailing characters in timestamp `%s`", token)
	}
	return t.UTC(), nil
}

// FormatTimestamp renders t the way file names carry it, without prefix
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	return t.Format(timestampLayout) + strconv.Itoa(t.Nanosecond()/int(100*time.Millisecond))
}

func satelliteFromPlatform(token string) string {
	digits := strings.TrimLeft(token, "G")
	if _, err := strconv.Atoi(digits); err != nil || digits == "" {
		return token
	}
	return "noaa-goes" + digits
}
