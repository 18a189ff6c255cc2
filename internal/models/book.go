package models

import "time"

// Book is a catalog item with rating data used for the top-books listing.
type Book struct {
	ID            string    `json:"id"`
	Image         string    `json:"image"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	OriginalPrice float64   `json:"originalPrice"`
	DiscountPrice float64   `json:"discountPrice"`
	Stock         int       `json:"stock"`
	RatingStar    float64   `json:"ratingStar"`
	RatingCount   int       `json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
