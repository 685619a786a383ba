package models

import "time"

// Review is a structured book review.
type Review struct {
	ID              int64      `json:"id"`
	BookID          int64      `json:"book_id"`
	UserID          int64      `json:"user_id"`
	Title           string     `json:"review_title"`
	Body            string     `json:"review"`
	StoryRating     int        `json:"story_rating"`
	StyleRating     int        `json:"style_rating"`
	CharacterRating int        `json:"character_rating"`
	OverallRating   float64    `json:"overall_rating"`
	Recommendation  bool       `json:"recommendation"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`

	// Author is filled client side from a batch username lookup.
	Author string `json:"-"`
}

// ReviewInput is the body of POST /reviews and PUT .../reviews/{id}.
type ReviewInput struct {
	BookID          int64   `json:"book_id"`
	UserID          int64   `json:"user_id"`
	Title           string  `json:"review_title"`
	Body            string  `json:"review"`
	StoryRating     int     `json:"story_rating"`
	StyleRating     int     `json:"style_rating"`
	CharacterRating int     `json:"character_rating"`
	OverallRating   float64 `json:"overall_rating"`
	Recommendation  bool    `json:"recommendation"`
}

// Overall is the mean of the three partial ratings.
func (r ReviewInput) Overall() float64 {
	return float64(r.StoryRating+r.StyleRating+r.CharacterRating) / 3.0
}
