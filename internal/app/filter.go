package app

import (
	"context"
	"net/http"
	"net/url"
)

// Navigator moves the browser to the root view selecting ref
type Navigator interface {
	Navigate(ref QuarterRef)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(ref QuarterRef)

// Navigate calls f(ref)
func (f NavigatorFunc) Navigate(ref QuarterRef) { f(ref) }

// QuarterFilter keeps the selected quarter consistent between the page and
// the quarter/year query parameters of the current URL.
//
// The URL is the source of truth: every Sync re-derives the selection from
// the values it is given. When the URL selects nothing, the first option is
// adopted and written back to the URL once.
type QuarterFilter struct {
	options  []QuarterOption
	nav      Navigator
	selected QuarterRef
	synced   bool
	closed   bool
}

// NewQuarterFilter builds the options from the available pairs. The first
// available pair is treated as the most recent one.
func NewQuarterFilter(available []QuarterRef, nav Navigator) *QuarterFilter {
	return &QuarterFilter{
		options: BuildQuarterOptions(available),
		nav:     nav,
	}
}

// Options returns the selectable quarters in display order
func (f *QuarterFilter) Options() []QuarterOption {
	return f.options
}

// Selected returns the current selection. ok is false until a selection has
// been made.
func (f *QuarterFilter) Selected() (ref QuarterRef, ok bool) {
	return f.selected, !f.selected.IsZero()
}

// Synced reports whether Sync has run at least once
func (f *QuarterFilter) Synced() bool {
	return f.synced
}

// Sync re-derives the selection from the URL query. A valid quarter/year
// pair in the URL is adopted as is, even when it is not one of the options.
// Otherwise the first option is selected and the URL is updated to match.
// It reports whether a navigation was issued.
func (f *QuarterFilter) Sync(ctx context.Context, query url.Values) bool {
	f.synced = true
	if ref, ok := ParseQuarterRef(query); ok {
		f.selected = ref
		return false
	}
	if len(f.options) == 0 {
		return false
	}
	f.selected = f.options[0].Ref()
	return f.navigate(ctx, f.selected)
}

// Select makes ref the current selection and navigates to it
func (f *QuarterFilter) Select(ctx context.Context, ref QuarterRef) bool {
	f.selected = ref
	f.synced = true
	return f.navigate(ctx, ref)
}

// SelectKey selects the quarter named by an option key ("fall-2024").
// It reports false without side effects when the key is malformed.
func (f *QuarterFilter) SelectKey(ctx context.Context, key string) bool {
	ref, ok := ParseQuarterKey(key)
	if !ok {
		return false
	}
	f.Select(ctx, ref)
	return true
}

// Close tears the filter down; no navigation is issued afterwards
func (f *QuarterFilter) Close() {
	f.closed = true
}

func (f *QuarterFilter) navigate(ctx context.Context, ref QuarterRef) bool {
	if f.closed || ctx.Err() != nil || f.nav == nil {
		return false
	}
	f.nav.Navigate(ref)
	return true
}

// RedirectNavigator navigates by answering the request with a redirect
type RedirectNavigator struct {
	W      http.ResponseWriter
	R      *http.Request
	Status int
}

// Navigate writes the redirect to the root view selecting ref
func (n *RedirectNavigator) Navigate(ref QuarterRef) {
	status := n.Status
	if status == 0 {
		status = http.StatusFound
	}
	http.Redirect(n.W, n.R, ref.URL(), status)
}
