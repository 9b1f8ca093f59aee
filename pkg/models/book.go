package models

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Reading statuses stored in books.type_library.
const (
	StatusToRead  = "to_read"
	StatusReading = "reading"
	StatusRead    = "read"
)

// Book is one user's library entry for a catalog item. The title, authors
// and cover id are denormalized copies of the catalog record taken at
// insertion time.
type Book struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	AuthorName StringList `json:"author_name"`
	CoverID    *int64     `json:"cover_i"`
	Status     string     `json:"type_library"`
	Rating     int        `json:"rating"` // 1..5, 0 means unrated
	AddedAt    time.Time  `json:"added_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PopularBook is a catalog item grouped across all libraries.
type PopularBook struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	AuthorName StringList `json:"author_name"`
	CoverID    *int64     `json:"cover_i"`
	Count      int        `json:"popularity"`
}

// NormalizeStatus maps user input onto a canonical status, or "" if the
// value is not one of the three statuses.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "to_read", "to read", "toread":
		return StatusToRead
	case "reading":
		return StatusReading
	case "read":
		return StatusRead
	default:
		return ""
	}
}

// NormalizeKey reduces an Open Library work key to its bare identifier so
// that "/works/OL45804W", "works/OL45804W" and "OL45804W" (plus their
// URL-escaped forms) all compare equal.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	key = strings.Trim(key, "/")
	key = strings.TrimPrefix(key, "works/")
	return key
}

// StringList is a []string that also accepts a single JSON string, since
// the catalog sometimes reports one author as a bare string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*s = nil
		return nil
	}
	*s = StringList{one}
	return nil
}

func (s StringList) String() string {
	return strings.Join(s, ", ")
}
