// model/content.go
package model

type ContentFormat string

const (
	FormatEbook     ContentFormat = "ebook"
	FormatAudiobook ContentFormat = "audiobook"
)

type EbookInfo struct {
	PageCount int    `json:"page_count"`
	Genre     string `json:"genre,omitempty"`
}

type AudiobookInfo struct {
	DurationMinutes int    `json:"duration_minutes"`
	Narrator        string `json:"narrator,omitempty"`
}

// ContentItem is a catalog entry. Format selects which of Ebook/Audiobook
// is set; exactly one must be non-nil.
type ContentItem struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Author          string         `json:"author"`
	Format          ContentFormat  `json:"format"`
	TotalCopies     int            `json:"total_copies"`
	AvailableCopies int            `json:"available_copies"`
	Ebook           *EbookInfo     `json:"ebook,omitempty"`
	Audiobook       *AudiobookInfo `json:"audiobook,omitempty"`
}
