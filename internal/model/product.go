package model

// RawProduct is one scraped product card. Every field except Timestamp may be
// absent (nil) and nothing about the present ones is trusted.
type RawProduct struct {
	ID        string
	SourceURL string
	Title     *string
	Price     *string
	Rating    *string
	Colors    *string
	Size      *string
	Gender    *string
	Timestamp string
}

// Product is a cleaned record with every core field present.
type Product struct {
	Title     string
	Price     float64
	Rating    float64
	Colors    int
	Size      string
	Gender    string
	Timestamp string
}

// Columns is the column order used by the CSV sink and the products table.
var Columns = []string{"title", "price", "rating", "colors", "size", "gender", "timestamp"}

// Ptr returns a pointer to s. Handy when building RawProduct literals.
func Ptr(s string) *string {
	return &s
}
