package model

import "time"

// Item is a single inventory row.
type Item struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ImagePath         string    `json:"image_path,omitempty"`
	RequiredQuantity  int       `json:"required_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at,omitzero"`
}

// HasImage reports whether the item references a blob.
func (i *Item) HasImage() bool {
	return i.ImagePath != ""
}

// ItemInput is the payload for adding or updating an item. Image is an
// encoded image (bare base64 or a data URL); empty means no new image.
type ItemInput struct {
	Name              string `json:"name"`
	Image             string `json:"image_base64,omitempty"`
	RequiredQuantity  int    `json:"required_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}
