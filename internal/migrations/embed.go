// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
	"fmt"
)

//go:embed sql/001_books.sql
var BooksSQL string

//go:embed sql/001_audiobooks.sql
var AudiobooksSQL string

//go:embed sql/001_movies.sql
var MoviesSQL string

//go:embed sql/001_events.sql
var EventsSQL string

// ForCategory returns the schema of a category database.
func ForCategory(category string) (string, error) {
	switch category {
	case "books":
		return BooksSQL, nil
	case "audiobooks":
		return AudiobooksSQL, nil
	case "movies":
		return MoviesSQL, nil
	}
	return "", fmt.Errorf("no schema for category %q", category)
}
