package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// recordingNavigator records navigations together with the selection the
// filter reported at the time of the call
type recordingNavigator struct {
	filter   *QuarterFilter
	calls    []QuarterRef
	observed []QuarterRef
}

func (n *recordingNavigator) Navigate(ref QuarterRef) {
	n.calls = append(n.calls, ref)
	if n.filter != nil {
		selected, _ := n.filter.Selected()
		n.observed = append(n.observed, selected)
	}
}

func newTestFilter(available []QuarterRef) (*QuarterFilter, *recordingNavigator) {
	nav := &recordingNavigator{}
	f := NewQuarterFilter(available, nav)
	nav.filter = f
	return f, nav
}

var testQuarters = []QuarterRef{
	{QuarterSpring, 2025},
	{QuarterWinter, 2025},
	{QuarterFall, 2024},
}

func TestQuarterFilterSync_DefaultsToFirstOption(t *testing.T) {
	f, nav := newTestFilter(testQuarters)

	if f.Synced() {
		t.Error("Filter should start unsynced")
	}
	if _, ok := f.Selected(); ok {
		t.Error("Filter should have no selection before Sync")
	}

	if !f.Sync(context.Background(), url.Values{}) {
		t.Error("Sync() without URL params should navigate")
	}

	selected, ok := f.Selected()
	if !ok || selected != (QuarterRef{QuarterSpring, 2025}) {
		t.Errorf("Expected spring 2025 to be selected, got %+v", selected)
	}
	if len(nav.calls) != 1 {
		t.Fatalf("Expected exactly 1 navigation, got %d", len(nav.calls))
	}
	if nav.calls[0] != (QuarterRef{QuarterSpring, 2025}) {
		t.Errorf("Navigated to %+v, want spring 2025", nav.calls[0])
	}
}

func TestQuarterFilterSync_AdoptsURL(t *testing.T) {
	tests := []struct {
		name      string
		available []QuarterRef
	}{
		{name: "Listed quarter", available: []QuarterRef{{QuarterSpring, 2024}, {QuarterFall, 2023}}},
		{name: "Unlisted quarter", available: testQuarters},
		{name: "No options", available: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, nav := newTestFilter(tt.available)

			query := url.Values{"quarter": {"spring"}, "year": {"2024"}}
			if f.Sync(context.Background(), query) {
				t.Error("Sync() with URL params should not navigate")
			}

			selected, ok := f.Selected()
			if !ok || selected != (QuarterRef{QuarterSpring, 2024}) {
				t.Errorf("Expected spring 2024 to be selected, got %+v", selected)
			}
			if len(nav.calls) != 0 {
				t.Errorf("Expected no navigation, got %d", len(nav.calls))
			}
		})
	}
}

func TestQuarterFilterSync_NoOptions(t *testing.T) {
	f, nav := newTestFilter([]QuarterRef{{"", 2024}, {QuarterFall, 0}})

	if f.Sync(context.Background(), url.Values{}) {
		t.Error("Sync() without options should not navigate")
	}
	if _, ok := f.Selected(); ok {
		t.Error("Selection should stay empty without options")
	}
	if len(nav.calls) != 0 {
		t.Errorf("Expected no navigation, got %d", len(nav.calls))
	}
	if !f.Synced() {
		t.Error("Filter should be synced after Sync")
	}
}

func TestQuarterFilterSync_FollowsURLChanges(t *testing.T) {
	f, nav := newTestFilter(testQuarters)
	ctx := context.Background()

	f.Sync(ctx, url.Values{"quarter": {"winter"}, "year": {"2025"}})
	f.Select(ctx, QuarterRef{QuarterFall, 2024})

	// back button: the URL changes without a selection in the page
	f.Sync(ctx, url.Values{"quarter": {"winter"}, "year": {"2025"}})

	selected, _ := f.Selected()
	if selected != (QuarterRef{QuarterWinter, 2025}) {
		t.Errorf("Expected selection to follow the URL, got %+v", selected)
	}
	if len(nav.calls) != 1 {
		t.Errorf("Expected 1 navigation (from Select), got %d", len(nav.calls))
	}
}

func TestQuarterFilterSelect_UpdatesSelectionBeforeNavigating(t *testing.T) {
	f, nav := newTestFilter(testQuarters)
	ctx := context.Background()
	f.Sync(ctx, url.Values{"quarter": {"spring"}, "year": {"2025"}})

	target := QuarterRef{QuarterFall, 2024}
	if !f.Select(ctx, target) {
		t.Fatal("Select() should navigate")
	}

	if len(nav.calls) != 1 || nav.calls[0] != target {
		t.Fatalf("Expected one navigation to %+v, got %+v", target, nav.calls)
	}
	if nav.observed[0] != target {
		t.Errorf("Selection during navigation = %+v, want %+v", nav.observed[0], target)
	}
}

func TestQuarterFilterSelectKey(t *testing.T) {
	f, nav := newTestFilter(testQuarters)
	ctx := context.Background()

	if !f.SelectKey(ctx, "winter-2025") {
		t.Fatal("SelectKey(winter-2025) failed")
	}
	if selected, _ := f.Selected(); selected != (QuarterRef{QuarterWinter, 2025}) {
		t.Errorf("Expected winter 2025, got %+v", selected)
	}

	if f.SelectKey(ctx, "garbage") {
		t.Error("SelectKey(garbage) should fail")
	}
	if selected, _ := f.Selected(); selected != (QuarterRef{QuarterWinter, 2025}) {
		t.Errorf("Failed SelectKey should keep the selection, got %+v", selected)
	}
	if len(nav.calls) != 1 {
		t.Errorf("Expected 1 navigation, got %d", len(nav.calls))
	}
}

func TestQuarterFilter_NoNavigationAfterTeardown(t *testing.T) {
	t.Run("Cancelled context", func(t *testing.T) {
		f, nav := newTestFilter(testQuarters)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if f.Sync(ctx, url.Values{}) {
			t.Error("Sync() should not navigate once the context is done")
		}
		if len(nav.calls) != 0 {
			t.Errorf("Expected no navigation, got %d", len(nav.calls))
		}
		if selected, _ := f.Selected(); selected != (QuarterRef{QuarterSpring, 2025}) {
			t.Errorf("Selection should still be resolved, got %+v", selected)
		}
	})

	t.Run("Closed filter", func(t *testing.T) {
		f, nav := newTestFilter(testQuarters)
		f.Close()

		f.Sync(context.Background(), url.Values{})
		f.Select(context.Background(), QuarterRef{QuarterFall, 2024})
		if len(nav.calls) != 0 {
			t.Errorf("Expected no navigation after Close, got %d", len(nav.calls))
		}
	})
}

func TestRedirectNavigator(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	nav := &RedirectNavigator{W: w, R: req}
	nav.Navigate(QuarterRef{QuarterFall, 2024})

	resp := w.Result()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("Expected status 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/?quarter=fall&year=2024" {
		t.Errorf("Expected Location /?quarter=fall&year=2024, got %s", loc)
	}
}

func TestNavigatorFunc(t *testing.T) {
	var got QuarterRef
	f := NewQuarterFilter(testQuarters, NavigatorFunc(func(ref QuarterRef) { got = ref }))
	f.Sync(context.Background(), nil)
	if got != (QuarterRef{QuarterSpring, 2025}) {
		t.Errorf("NavigatorFunc received %+v", got)
	}
}
