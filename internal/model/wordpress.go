package model

type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a WordPress post or page.
type Post struct {
	ID            int64    `json:"id"`
	Slug          string   `json:"slug"`
	Date          string   `json:"date"`
	Link          string   `json:"link"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Excerpt       Rendered `json:"excerpt"`
	FeaturedMedia int64    `json:"featured_media"`
}

type MediaSize struct {
	SourceURL string `json:"source_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type Media struct {
	ID           int64    `json:"id"`
	SourceURL    string   `json:"source_url"`
	AltText      string   `json:"alt_text"`
	MimeType     string   `json:"mime_type"`
	Title        Rendered `json:"title"`
	MediaDetails struct {
		Width  int                  `json:"width"`
		Height int                  `json:"height"`
		Sizes  map[string]MediaSize `json:"sizes"`
	} `json:"media_details"`
}
