package models

// Book is a catalogued book. Backend records carry ID and GoogleID; search
// results from the catalog only carry GoogleID.
type Book struct {
	ID            int64  `json:"id,omitempty"`
	GoogleID      string `json:"google_id,omitempty"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description,omitempty"`
	Genre         string `json:"genre,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
	Thumbnail     string `json:"thumbnail,omitempty"`
}

// FavoriteRef is the minimal shape read from GET /favoritos; the backend
// returns full book rows but only the id matters for the favorite set.
type FavoriteRef struct {
	ID int64 `json:"id"`
}
