package item

type EbookReq struct {
	PageCount int    `json:"page_count" validate:"required,gt=0"`
	Genre     string `json:"genre"`
}

type AudiobookReq struct {
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	Narrator        string `json:"narrator"`
}

type CreateItemReq struct {
	Title       string        `json:"title" validate:"required"`
	Author      string        `json:"author" validate:"required"`
	Format      string        `json:"format" validate:"required,oneof=ebook audiobook"`
	TotalCopies int           `json:"total_copies" validate:"gte=0"`
	Ebook       *EbookReq     `json:"ebook,omitempty"`
	Audiobook   *AudiobookReq `json:"audiobook,omitempty"`
}

type AddCopiesReq struct {
	Count int `json:"count" validate:"required,gt=0"`
}
