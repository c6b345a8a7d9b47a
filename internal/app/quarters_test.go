package app

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strconv"
	"testing"
)

func TestBuildQuarterOptions(t *testing.T) {
	available := []QuarterRef{
		{Quarter: QuarterSpring, Year: 2025},
		{Quarter: QuarterWinter, Year: 2025},
		{Quarter: "", Year: 2025},            // missing quarter
		{Quarter: QuarterFall, Year: 0},      // missing year
		{Quarter: "summer", Year: 2024},      // unknown quarter
		{Quarter: QuarterSpring, Year: 2025}, // duplicate
		{Quarter: QuarterFall, Year: 2024},
	}

	options := BuildQuarterOptions(available)

	want := []QuarterOption{
		{Quarter: QuarterSpring, Year: 2025, Label: "Spring 2025", Key: "spring-2025"},
		{Quarter: QuarterWinter, Year: 2025, Label: "Winter 2025", Key: "winter-2025"},
		{Quarter: QuarterFall, Year: 2024, Label: "Fall 2024", Key: "fall-2024"},
	}
	if !reflect.DeepEqual(options, want) {
		t.Errorf("BuildQuarterOptions() = %+v, want %+v", options, want)
	}
}

func TestBuildQuarterOptions_KeysAreUnique(t *testing.T) {
	var available []QuarterRef
	for year := 2020; year <= 2025; year++ {
		for _, q := range []Quarter{QuarterFall, QuarterWinter, QuarterSpring, QuarterFall} {
			available = append(available, QuarterRef{Quarter: q, Year: year})
		}
	}

	options := BuildQuarterOptions(available)
	if len(options) != 18 {
		t.Fatalf("Expected 18 options (6 years × 3 quarters), got %d", len(options))
	}

	seen := make(map[string]bool)
	for _, o := range options {
		if o.Key != o.Ref().Key() || o.Key != string(o.Quarter)+"-"+strconv.Itoa(o.Year) {
			t.Errorf("Unexpected key %q for %s %d", o.Key, o.Quarter, o.Year)
		}
		if seen[o.Key] {
			t.Errorf("Duplicate key %q", o.Key)
		}
		seen[o.Key] = true
	}
}

func TestBuildQuarterOptions_Empty(t *testing.T) {
	if options := BuildQuarterOptions(nil); len(options) != 0 {
		t.Errorf("Expected no options, got %d", len(options))
	}
}

func TestParseQuarterRef(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  QuarterRef
		ok    bool
	}{
		{name: "Valid", query: "quarter=spring&year=2024", want: QuarterRef{QuarterSpring, 2024}, ok: true},
		{name: "Upper case quarter", query: "quarter=Fall&year=2023", want: QuarterRef{QuarterFall, 2023}, ok: true},
		{name: "Missing year", query: "quarter=spring", ok: false},
		{name: "Missing quarter", query: "year=2024", ok: false},
		{name: "Unknown quarter", query: "quarter=summer&year=2024", ok: false},
		{name: "Year not a number", query: "quarter=winter&year=next", ok: false},
		{name: "Empty", query: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery() failed: %v", err)
			}
			got, ok := ParseQuarterRef(values)
			if ok != tt.ok {
				t.Fatalf("ParseQuarterRef(%q) ok = %v, want %v", tt.query, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseQuarterRef(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseQuarterKey(t *testing.T) {
	ref, ok := ParseQuarterKey("winter-2025")
	if !ok || ref != (QuarterRef{QuarterWinter, 2025}) {
		t.Errorf("ParseQuarterKey(winter-2025) = %+v, %v", ref, ok)
	}

	for _, key := range []string{"", "winter", "winter-", "-2025", "summer-2025"} {
		if _, ok := ParseQuarterKey(key); ok {
			t.Errorf("ParseQuarterKey(%q) should fail", key)
		}
	}
}

func TestQuarterRefURL(t *testing.T) {
	ref := QuarterRef{Quarter: QuarterFall, Year: 2024}
	if got := ref.URL(); got != "/?quarter=fall&year=2024" {
		t.Errorf("URL() = %q", got)
	}
}

func TestDistinctQuarters(t *testing.T) {
	refs := []QuarterRef{
		{QuarterWinter, 2024},
		{QuarterFall, 2024},
		{QuarterSpring, 2025},
		{QuarterFall, 2024},
		{QuarterSpring, 2024},
		{"", 2025},
		{QuarterWinter, 2025},
	}

	got := DistinctQuarters(refs)
	want := []QuarterRef{
		{QuarterSpring, 2025},
		{QuarterWinter, 2025},
		{QuarterFall, 2024},
		{QuarterSpring, 2024},
		{QuarterWinter, 2024},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctQuarters() = %+v, want %+v", got, want)
	}
}

func TestWorkshopQuarters(t *testing.T) {
	workshops := []Workshop{
		{ID: "1", Quarter: QuarterFall, Year: 2024},
		{ID: "2", Quarter: QuarterFall, Year: 2024},
		{ID: "3", Quarter: QuarterWinter, Year: 2025},
		{ID: "4"},
	}

	got := WorkshopQuarters(workshops)
	want := []QuarterRef{{QuarterWinter, 2025}, {QuarterFall, 2024}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WorkshopQuarters() = %+v, want %+v", got, want)
	}
}

func TestQuarterUnmarshalJSON(t *testing.T) {
	var refs []QuarterRef
	data := `[{"quarter":" Spring ","year":2024},{"quarter":null,"year":2024},{"year":2023}]`
	if err := json.Unmarshal([]byte(data), &refs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := []QuarterRef{{QuarterSpring, 2024}, {"", 2024}, {"", 2023}}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("Unmarshal = %+v, want %+v", refs, want)
	}
}
