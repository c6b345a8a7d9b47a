package app

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// quarterRank orders the quarters of one calendar year chronologically
var quarterRank = map[Quarter]int{
	QuarterWinter: 1,
	QuarterSpring: 2,
	QuarterFall:   3,
}

// ParseQuarter returns the quarter named by s, if it is one of the known terms
func ParseQuarter(s string) (Quarter, bool) {
	q := Quarter(strings.ToLower(strings.TrimSpace(s)))
	_, ok := quarterRank[q]
	return q, ok
}

// Valid reports whether both the quarter and the year are usable
func (r QuarterRef) Valid() bool {
	_, ok := quarterRank[r.Quarter]
	return ok && r.Year > 0
}

// IsZero reports whether r selects nothing
func (r QuarterRef) IsZero() bool {
	return r.Quarter == "" && r.Year == 0
}

// Key returns the canonical "<quarter>-<year>" form
func (r QuarterRef) Key() string {
	return fmt.Sprintf("%s-%d", r.Quarter, r.Year)
}

// Label returns the human readable "<Quarter> <year>" form
func (r QuarterRef) Label() string {
	q := string(r.Quarter)
	if q != "" {
		q = strings.ToUpper(q[:1]) + q[1:]
	}
	return fmt.Sprintf("%s %d", q, r.Year)
}

// Query encodes r as the quarter/year query parameters
func (r QuarterRef) Query() url.Values {
	v := url.Values{}
	v.Set("quarter", string(r.Quarter))
	v.Set("year", strconv.Itoa(r.Year))
	return v
}

// URL returns the root path selecting r
func (r QuarterRef) URL() string {
	return "/?" + r.Query().Encode()
}

// Ref returns the quarter/year pair of the option
func (o QuarterOption) Ref() QuarterRef {
	return QuarterRef{Quarter: o.Quarter, Year: o.Year}
}

// ParseQuarterRef reads the quarter/year query parameters. It reports false
// when either is missing or malformed.
func ParseQuarterRef(values url.Values) (QuarterRef, bool) {
	q, ok := ParseQuarter(values.Get("quarter"))
	if !ok {
		return QuarterRef{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(values.Get("year")))
	if err != nil || year <= 0 {
		return QuarterRef{}, false
	}
	return QuarterRef{Quarter: q, Year: year}, true
}

// ParseQuarterKey parses the "<quarter>-<year>" form produced by Key
func ParseQuarterKey(key string) (QuarterRef, bool) {
	q, y, found := strings.Cut(key, "-")
	if !found {
		return QuarterRef{}, false
	}
	return ParseQuarterRef(url.Values{"quarter": {q}, "year": {y}})
}

// BuildQuarterOptions turns the available quarter/year pairs into selectable
// options. Invalid pairs are dropped and repeated pairs keep their first
// position; the input order is otherwise preserved.
func BuildQuarterOptions(available []QuarterRef) []QuarterOption {
	options := make([]QuarterOption, 0, len(available))
	seen := make(map[QuarterRef]bool, len(available))
	for _, ref := range available {
		if !ref.Valid() || seen[ref] {
			continue
		}
		seen[ref] = true
		options = append(options, QuarterOption{
			Quarter: ref.Quarter,
			Year:    ref.Year,
			Label:   ref.Label(),
			Key:     ref.Key(),
		})
	}
	return options
}

// SortQuartersRecentFirst sorts refs by year and then by quarter, most
// recent first.
func SortQuartersRecentFirst(refs []QuarterRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Year != refs[j].Year {
			return refs[i].Year > refs[j].Year
		}
		return quarterRank[refs[i].Quarter] > quarterRank[refs[j].Quarter]
	})
}

// DistinctQuarters drops invalid and repeated pairs and sorts the rest most
// recent first.
func DistinctQuarters(refs []QuarterRef) []QuarterRef {
	seen := make(map[QuarterRef]bool, len(refs))
	distinct := make([]QuarterRef, 0, len(refs))
	for _, ref := range refs {
		if !ref.Valid() || seen[ref] {
			continue
		}
		seen[ref] = true
		distinct = append(distinct, ref)
	}
	SortQuartersRecentFirst(distinct)
	return distinct
}

// WorkshopQuarters returns the distinct quarters the workshops belong to,
// most recent first.
func WorkshopQuarters(workshops []Workshop) []QuarterRef {
	refs := make([]QuarterRef, len(workshops))
	for i, w := range workshops {
		refs[i] = QuarterRef{Quarter: w.Quarter, Year: w.Year}
	}
	return DistinctQuarters(refs)
}

// UnmarshalJSON accepts null and normalizes case and surrounding space
func (q *Quarter) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*q = ""
		return nil
	}
	*q = Quarter(strings.ToLower(strings.TrimSpace(*s)))
	return nil
}
