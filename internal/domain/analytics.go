package domain

// DailyEntry is one (domain, title, category) row of a daily rollup,
// summed across devices.
type DailyEntry struct {
	Domain       string `json:"domain"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
}

// CategorySum is seconds/visits grouped by category.
type CategorySum struct {
	Category     string `json:"category"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
}

// DeviceSum is seconds/visits grouped by device.
type DeviceSum struct {
	DeviceID     string `json:"device_id"`
	DeviceName   string `json:"device_name"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
}

// DaySum is seconds/visits for one calendar day.
type DaySum struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
}

// DomainSum is seconds/visits for one domain over a window.
type DomainSum struct {
	Domain       string `json:"domain"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
}

// DailySummary is the full rollup for one date, ordered by seconds descending.
type DailySummary struct {
	Date            string        `json:"date"`
	Entries         []DailyEntry  `json:"entries"`
	TotalSeconds    int64         `json:"total_seconds"`
	TotalVisits     int64         `json:"total_visits"`
	Categories      []CategorySum `json:"categories"`
	Devices         []DeviceSum   `json:"devices"`
	ScreenshotCount int64         `json:"screenshot_count"`
}

// WeeklySummary covers a trailing multi-week window.
type WeeklySummary struct {
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
	Days       []DaySum      `json:"days"`
	TopDomains []DomainSum   `json:"top_domains"`
	Categories []CategorySum `json:"categories"`
}

// WindowStats are the totals for one 7-day trend window.
type WindowStats struct {
	TotalSeconds int64         `json:"total_seconds"`
	TotalVisits  int64         `json:"total_visits"`
	Domains      int64         `json:"domains"`
	ActiveDays   int64         `json:"active_days"`
	Categories   []CategorySum `json:"categories"`
}

// Trends returns the trailing week next to the week before it; diffing is
// left to the caller.
type Trends struct {
	ThisWeek WindowStats `json:"this_week"`
	LastWeek WindowStats `json:"last_week"`
}

// DomainRank is one row of a top-domains ranking.
type DomainRank struct {
	Domain       string `json:"domain"`
	TotalSeconds int64  `json:"total_seconds"`
	Visits       int64  `json:"visits"`
	ActiveDays   int64  `json:"active_days"`
}
