package database

// Collection names one persisted set of entities
type Collection string

const (
	Cars      Collection = "cars"
	Sales     Collection = "sales"
	Users     Collection = "users"
	Favorites Collection = "favorites"
	Reviews   Collection = "reviews"
	Bookings  Collection = "bookings"
)

// AllCollections lists every collection the service owns
var AllCollections = []Collection{Cars, Sales, Users, Favorites, Reviews, Bookings}

// EmptyDocument returns the JSON document a collection starts with.
// Favorites and reviews are keyed objects, everything else is a bare array.
func (c Collection) EmptyDocument() []byte {
	switch c {
	case Favorites:
		return []byte(`{"favorites": []}`)
	case Reviews:
		return []byte(`{"reviews": []}`)
	default:
		return []byte(`[]`)
	}
}

// FileName returns the name of the file backing the collection
func (c Collection) FileName() string {
	// The car inventory has always lived in db.json.
	if c == Cars {
		return "db.json"
	}
	return string(c) + ".json"
}
