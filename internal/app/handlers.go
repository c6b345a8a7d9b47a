package app

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
)

// Server serves the workshop calendar
type Server struct {
	Config  Config
	Catalog *Catalog
	Themes  ThemeStore
	Auth    *Authenticator
}

// NewServer wires the calendar handlers
func NewServer(cfg Config, catalog *Catalog, themes ThemeStore, auth *Authenticator) *Server {
	if auth == nil {
		auth = &Authenticator{}
	}
	return &Server{Config: cfg, Catalog: catalog, Themes: themes, Auth: auth}
}

// Routes returns the handler for all routes. Page forms are CSRF protected,
// the JSON/ICS API is not.
func (s *Server) Routes() http.Handler {
	pages := http.NewServeMux()
	pages.HandleFunc("/", s.ServeIndex)
	pages.HandleFunc("/select", s.HandleSelect)
	pages.HandleFunc("/theme", s.HandleTheme)

	mux := http.NewServeMux()
	mux.Handle("/", protectForms(s.Config, pages))
	mux.HandleFunc("/api/quarters", s.HandleQuarters)
	mux.HandleFunc("/api/workshops", s.HandleWorkshops)
	mux.HandleFunc("/api/download", s.HandleDownload)
	mux.HandleFunc("/api/subscribe", s.HandleSubscribe)
	mux.HandleFunc("/api/admin/refresh", s.Auth.RequireAuth(s.HandleRefresh))
	mux.Handle("/static/", http.FileServer(http.FS(assets)))

	return RequestLogger(mux)
}

// ServeIndex renders the calendar page for the quarter in the URL. Without a
// quarter in the URL the visitor is redirected to the most recent one.
func (s *Server) ServeIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	query := r.URL.Query()
	requested, _ := ParseQuarterRef(query)

	quarters, workshops, err := s.Catalog.Load(ctx, requested)
	if err != nil {
		log.Printf("Error loading workshops: %v", err)
		http.Error(w, ErrContentFetch, http.StatusBadGateway)
		return
	}

	filter := NewQuarterFilter(quarters, &RedirectNavigator{W: w, R: r, Status: http.StatusFound})
	defer filter.Close()
	if filter.Sync(ctx, query) {
		return
	}

	data := pageData{
		Title:      s.Config.SiteTitle,
		Homepage:   s.Config.SiteHomepage,
		Links:      s.Config.SocialLinks,
		Light:      s.Themes.Light(r),
		CSRFField:  csrf.TemplateField(r),
		ReturnPath: r.URL.RequestURI(),
		Options:    filter.Options(),
	}

	if selected, ok := filter.Selected(); ok {
		data.Selected = selected
		data.HasSelection = true
		data.DownloadURL = template.URL("/api/download?" + selected.Query().Encode() + "&format=ics")
		for _, option := range data.Options {
			if option.Key == selected.Key() {
				data.SelectedListed = true
				break
			}
		}
		data.Days = GroupByDay(workshops)
	}

	renderPage(w, data)
}

// HandleSelect applies a quarter picked in the filter form
// Form field: quarter=<quarter>-<year>
func (s *Server) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	filter := NewQuarterFilter(nil, &RedirectNavigator{W: w, R: r, Status: http.StatusSeeOther})
	defer filter.Close()
	if !filter.SelectKey(r.Context(), r.FormValue("quarter")) {
		http.Error(w, ErrInvalidQuarter, http.StatusBadRequest)
	}
}

// HandleTheme flips the light/dark preference and returns to the page the
// form was posted from
func (s *Server) HandleTheme(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	s.Themes.SetLight(w, !s.Themes.Light(r))
	http.Redirect(w, r, safeReturnPath(r.FormValue("return")), http.StatusSeeOther)
}

// HandleQuarters returns the selectable quarters, most recent first
func (s *Server) HandleQuarters(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	quarters, err := s.Catalog.Quarters(r.Context())
	if err != nil {
		log.Printf("Error loading quarters: %v", err)
		http.Error(w, ErrContentFetch, http.StatusBadGateway)
		return
	}
	writeJSON(w, BuildQuarterOptions(quarters))
}

// requestedQuarter resolves the quarter/year query parameters, falling back
// to the most recent quarter when both are absent. It writes the error
// response itself and reports false in that case.
func (s *Server) requestedQuarter(w http.ResponseWriter, r *http.Request) (QuarterRef, bool) {
	query := r.URL.Query()
	if query.Get("quarter") == "" && query.Get("year") == "" {
		quarters, err := s.Catalog.Quarters(r.Context())
		if err != nil {
			log.Printf("Error loading quarters: %v", err)
			http.Error(w, ErrContentFetch, http.StatusBadGateway)
			return QuarterRef{}, false
		}
		options := BuildQuarterOptions(quarters)
		if len(options) == 0 {
			http.Error(w, ErrNoQuarters, http.StatusNotFound)
			return QuarterRef{}, false
		}
		return options[0].Ref(), true
	}

	if _, ok := ParseQuarter(query.Get("quarter")); !ok {
		http.Error(w, ErrInvalidQuarter, http.StatusBadRequest)
		return QuarterRef{}, false
	}
	ref, ok := ParseQuarterRef(query)
	if !ok {
		http.Error(w, ErrInvalidYear, http.StatusBadRequest)
		return QuarterRef{}, false
	}
	return ref, true
}

// HandleWorkshops returns the workshops of a quarter grouped by day
// Query params: quarter, year (optional, default to the most recent quarter)
func (s *Server) HandleWorkshops(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ref, ok := s.requestedQuarter(w, r)
	if !ok {
		return
	}

	workshops, err := s.Catalog.Workshops(r.Context(), ref)
	if err != nil {
		log.Printf("Error loading workshops for %s: %v", ref.Key(), err)
		http.Error(w, ErrContentFetch, http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{
		"quarter": ref.Quarter,
		"year":    ref.Year,
		"label":   ref.Label(),
		"days":    GroupByDay(workshops),
	})
}

// HandleDownload handles export downloads in ICS, CSV or JSON format
// Query params: quarter, year, format
func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "ics" && format != "csv" && format != "json" {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	ref, ok := s.requestedQuarter(w, r)
	if !ok {
		return
	}

	workshops, err := s.Catalog.Workshops(r.Context(), ref)
	if err != nil {
		log.Printf("Error loading workshops for %s: %v", ref.Key(), err)
		http.Error(w, ErrContentFetch, http.StatusBadGateway)
		return
	}

	switch format {
	case "ics":
		GenerateICS(w, r, ref, workshops)
	case "csv":
		GenerateCSV(w, ref, workshops)
	case "json":
		GenerateJSON(w, ref, workshops)
	}
}

// HandleSubscribe serves an ICS feed with the workshops from last year onwards
func (s *Server) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	workshops, err := s.Catalog.Workshops(r.Context(), QuarterRef{})
	if err != nil {
		log.Printf("Error loading workshops: %v", err)
		http.Error(w, ErrContentFetch, http.StatusBadGateway)
		return
	}

	minYear := time.Now().Year() - 1
	var upcoming []Workshop
	for _, workshop := range workshops {
		if len(workshop.Date) < 4 {
			continue
		}
		if year, err := strconv.Atoi(workshop.Date[:4]); err == nil && year >= minYear {
			upcoming = append(upcoming, workshop)
		}
	}

	GenerateSubscriptionICS(w, s.Config.SiteTitle, upcoming)
}

// HandleRefresh drops the cached content so the next request reads the
// content store again (admin only)
func (s *Server) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.Catalog.Refresh(); err != nil {
		log.Printf("Error refreshing content: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Content cache refreshed")
	writeJSON(w, map[string]string{"status": "ok"})
}
