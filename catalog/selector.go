package catalog

import (
	"sort"
	"time"
)

// Selection is the result of a time query. An empty selection is a normal
// outcome, not an error.
type Selection []ObservationRecord

// NoData is true when nothing matched
func (s Selection) NoData() bool {
	return len(s) == 0
}

// Start returns the shared start time of a nearest or latest selection
func (s Selection) Start() time.Time {
	if s.NoData() {
		return time.Time{}
	}
	return s[0].Start
}

// SelectRange keeps records that start at or after start and end at or
// before end. Input order is preserved; callers sort if they need to.
func SelectRange(records []ObservationRecord, start, end time.Time) Selection {
	out := Selection{}
	for _, r := range records {
		if !r.Start.Before(start) && !r.End.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// SelectNearest returns every record sharing the start time closest to
// target among records inside [target-within, target+within]. Equal
// distances resolve to the earlier start.
func SelectNearest(records []ObservationRecord, target time.Time, within time.Duration) Selection {
	candidates := SelectRange(records, target.Add(-within), target.Add(within))
	if candidates.NoData() {
		return candidates
	}

	best := candidates[0].Start
	bestDistance := absDuration(best.Sub(target))
	for _, r := range candidates[1:] {
		d := absDuration(r.Start.Sub(target))
		if d < bestDistance || (d == bestDistance && r.Start.Before(best)) {
			best, bestDistance = r.Start, d
		}
	}
	return withStart(candidates, best)
}

// SelectLatest returns every record sharing the latest start time
func SelectLatest(records []ObservationRecord) Selection {
	if len(records) == 0 {
		return Selection{}
	}
	latest := records[0].Start
	for _, r := range records[1:] {
		if r.Start.After(latest) {
			latest = r.Start
		}
	}
	return withStart(records, latest)
}

// SortByStart orders records by start time, then band, then path
func SortByStart(records []ObservationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Band != b.Band {
			return a.Band < b.Band
		}
		return a.Path < b.Path
	})
}

func withStart(records []ObservationRecord, start time.Time) Selection {
	out := Selection{}
	for _, r := range records {
		if r.Start.Equal(start) {
			out = append(out, r)
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
