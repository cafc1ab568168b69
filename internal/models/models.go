package models

import (
	"encoding/json"
	"time"
)

// Car is one vehicle of the inventory
type Car struct {
	ID       int      `json:"id"`
	Make     string   `json:"make"`
	Model    string   `json:"model"`
	Year     int      `json:"year"`
	Features []string `json:"features"`
}

// CarInput is the payload accepted when creating or updating a car.
// Year is kept raw so that non-integer values can be reported as a validation
// failure rather than a decoding error.
type CarInput struct {
	ID       int             `json:"-"`
	Make     string          `json:"make"`
	Model    string          `json:"model"`
	Year     json.RawMessage `json:"year"`
	Features []string        `json:"features"`
}

// YearValue returns the year when it is a JSON integer
func (in CarInput) YearValue() (int, bool) {
	return IntLiteral(in.Year)
}

// CarPage is one page of the car listing
type CarPage struct {
	Data  []Car `json:"data"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Sale is one sales fact: units of a model sold in a country during a year
type Sale struct {
	Year      int    `json:"year"`
	Model     string `json:"model"`
	Country   string `json:"country"`
	UnitsSold int    `json:"units_sold"`
}

// SaleList is the response of the sales listing
type SaleList struct {
	Data  []Sale `json:"data"`
	Total int    `json:"total"`
}

// CountryTotal is the summed units for a country
type CountryTotal struct {
	Country    string `json:"country"`
	TotalUnits int    `json:"total_units"`
}

// ModelTotal is the summed units for a model
type ModelTotal struct {
	Model      string `json:"model"`
	TotalUnits int    `json:"total_units"`
}

// YearTotal is the summed units for a year
type YearTotal struct {
	Year       int `json:"year"`
	TotalUnits int `json:"total_units"`
}

// User is a registered account. Password holds a bcrypt digest.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// FavoritesEntry lists the favorite car ids of one user
type FavoritesEntry struct {
	Username string `json:"username"`
	CarIDs   []int  `json:"carIds"`
}

// FavoritesDocument is the persisted shape of the favorites collection
type FavoritesDocument struct {
	Favorites []FavoritesEntry `json:"favorites"`
}

// FavoriteIDs is the response listing one user's favorites
type FavoriteIDs struct {
	CarIDs []int `json:"carIds"`
}

// Review is a rated comment on a car
type Review struct {
	ID       int    `json:"id"`
	CarID    int    `json:"car_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
	Date     string `json:"date"`
	Updated  string `json:"updated,omitempty"`
}

// ReviewsDocument is the persisted shape of the reviews collection
type ReviewsDocument struct {
	Reviews []Review `json:"reviews"`
}

// ReviewRequest is the payload for creating a review
type ReviewRequest struct {
	CarID  *int    `json:"car_id"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

// ReviewUpdate is the payload for editing a review; absent fields are kept
type ReviewUpdate struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

// CarReviews lists the reviews of one car with their average
type CarReviews struct {
	Reviews   []Review `json:"reviews"`
	AvgRating float64  `json:"avgRating"`
	Total     int      `json:"total"`
}

// RatingSummary is the average rating of one car
type RatingSummary struct {
	AvgRating float64 `json:"avgRating"`
	Total     int     `json:"total"`
}

// Booking reserves a car for a pickup slot. UserID is the owner's username.
type Booking struct {
	ID         int    `json:"id"`
	UserID     string `json:"user_id"`
	CarID      int    `json:"car_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	ReturnDate string `json:"return_date"`
	ReturnTime string `json:"return_time"`
	CreatedAt  string `json:"created_at"`
}

// BookingRequest is the payload for creating a booking.
// car_id may be sent as a number or a numeric string.
type BookingRequest struct {
	CarID      json.RawMessage `json:"car_id"`
	Date       *string         `json:"date"`
	Time       *string         `json:"time"`
	ReturnDate *string         `json:"return_date"`
	ReturnTime *string         `json:"return_time"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ReviewResponse wraps a created or updated review
type ReviewResponse struct {
	Review  Review `json:"review"`
	Success bool   `json:"success"`
}

// BookingCancelled is returned after a booking is deleted
type BookingCancelled struct {
	Message string  `json:"message"`
	Booking Booking `json:"booking"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Change event types
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// ChangeEvent represents a change notification for SSE
type ChangeEvent struct {
	EventType  string    `json:"event_type"`
	Collection string    `json:"collection"`
	EntityID   string    `json:"entity_id,omitempty"`
	Data       any       `json:"data,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
