package app

// Quarter is an academic term used to bucket workshops by offering period
type Quarter string

const (
	QuarterWinter Quarter = "winter"
	QuarterSpring Quarter = "spring"
	QuarterFall   Quarter = "fall"
)

// Workshop represents a single workshop entry as stored in the CMS
type Workshop struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Quarter     Quarter `json:"quarter"`
	Year        int     `json:"year"`
	Location    string  `json:"location,omitempty"`
	Time        string  `json:"time,omitempty"`
	Description string  `json:"description,omitempty"`
	Link        string  `json:"link,omitempty"`
}

// QuarterRef identifies a quarter of a given year
type QuarterRef struct {
	Quarter Quarter `json:"quarter"`
	Year    int     `json:"year"`
}

// QuarterOption is a selectable entry of the quarter filter
type QuarterOption struct {
	Quarter Quarter `json:"quarter"`
	Year    int     `json:"year"`
	Label   string  `json:"label"`
	Key     string  `json:"value"`
}

// DaySection groups all workshops sharing one calendar date
type DaySection struct {
	Date      string     `json:"date"`
	Header    string     `json:"header"`
	Weekend   bool       `json:"weekend"`
	Workshops []Workshop `json:"workshops"`
}

// Snapshot is the on-disk copy of the CMS content used in offline mode
type Snapshot struct {
	CreatedAt string     `json:"created_at"`
	Source    string     `json:"source"`
	Workshops []Workshop `json:"workshops"`
}

// SocialLink is a link rendered in the page header
type SocialLink struct {
	Name string `toml:"name" json:"name"`
	Icon string `toml:"icon" json:"icon"`
	Href string `toml:"href" json:"href"`
}
