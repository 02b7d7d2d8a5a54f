package facts

import (
	"sort"
	"strconv"
)

// candidate is one time-stamped observation of a concept that survived the
// target-year filter.
type candidate struct {
	value    float64
	duration int    // whole years, 0 for an instant
	filedAt  string // ISO-8601, empty when the record carries no filing date
	endDate  string
}

// SelectAnnual picks the value representing the target fiscal year's annual
// figure from a list of candidate fact records. Records without an end date,
// with an end year other than the target, or spanning more than one whole
// year (multi-year cumulative figures) are discarded. Survivors are ranked by
// shortest duration, then most recent filing date: filings routinely disclose
// the same concept for several periods under one tag, and duration plus
// recency is the deterministic disambiguator. Returns nil when nothing
// survives.
func SelectAnnual(list *Node, targetYear int) *float64 {
	if list.Kind() != KindList {
		return nil
	}

	var candidates []candidate
	for _, item := range list.Items() {
		if c, ok := parseCandidate(item, targetYear); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].duration != candidates[j].duration {
			return candidates[i].duration < candidates[j].duration
		}
		if candidates[i].filedAt != candidates[j].filedAt {
			return candidates[i].filedAt > candidates[j].filedAt
		}
		return candidates[i].endDate > candidates[j].endDate
	})

	v := candidates[0].value
	return &v
}

// parseCandidate reads one record's period, filing date, and value. The
// period is either {startDate, endDate} or {instant}; an instant counts as a
// zero-duration period ending on that date.
func parseCandidate(item *Node, targetYear int) (candidate, bool) {
	if item.Kind() != KindMapping {
		return candidate{}, false
	}

	period, ok := item.Field("period")
	if !ok || period.Kind() != KindMapping {
		return candidate{}, false
	}

	endDate := stringField(period, "endDate")
	startDate := stringField(period, "startDate")
	if endDate == "" {
		endDate = stringField(period, "instant")
		startDate = ""
	}
	if endDate == "" {
		return candidate{}, false
	}

	endYear, ok := yearOf(endDate)
	if !ok || endYear != targetYear {
		return candidate{}, false
	}

	duration := 0
	if startDate != "" {
		startYear, ok := yearOf(startDate)
		if !ok {
			return candidate{}, false
		}
		duration = endYear - startYear
	}
	if duration < 0 || duration > 1 {
		return candidate{}, false
	}

	value := NormalizeValue(item)
	if value == nil {
		return candidate{}, false
	}

	filedAt := stringField(item, "filedAt")
	if filedAt == "" {
		filedAt = stringField(item, "filed")
	}

	return candidate{
		value:    *value,
		duration: duration,
		filedAt:  filedAt,
		endDate:  endDate,
	}, true
}

func stringField(n *Node, name string) string {
	child, ok := n.Field(name)
	if !ok {
		return ""
	}
	s, _ := child.Scalar().(string)
	return s
}

func yearOf(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
