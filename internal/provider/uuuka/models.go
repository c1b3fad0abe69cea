package uuuka

import "github.com/GamblerIX/duanju/internal/provider"

// Envelope is the upstream's uniform response wrapper.
type Envelope struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    Listing `json:"data"`
}

// Listing is the paged item container inside an envelope.
type Listing struct {
	Items []Item `json:"items"`
	Page  int    `json:"page"`
	Total int    `json:"total"`
}

// Item is one content record. The netdisk share link under source_link
// is the only handle the upstream exposes.
type Item struct {
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	Description string `json:"description"`
	SourceLink  string `json:"source_link"`
	ContentType string `json:"content_type"`
	UpdatedAt   string `json:"updated_at"`
}

// toDrama maps an upstream item onto the canonical drama model, using
// the share link as the drama id.
func (it Item) toDrama(category string) provider.DramaInfo {
	cat := category
	if cat == "" {
		cat = it.ContentType
	}
	return provider.DramaInfo{
		ID:       it.SourceLink,
		Title:    it.Title,
		CoverURL: it.Cover,
		Intro:    it.Description,
		Category: cat,
	}
}
