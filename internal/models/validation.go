package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"carcatalog/internal/apperror"
)

var (
	makePattern  = regexp.MustCompile(`^[A-Z][A-Za-z\s-]*$`)
	modelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\s-]*$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateCar checks a candidate car against the existing inventory.
// Checks run in a fixed order and the first violation is returned:
// duplicate model and year, digits in make, make format, model format, year type.
func ValidateCar(in CarInput, existing []Car) error {
	year, yearOK := in.YearValue()

	for _, car := range existing {
		if car.ID == in.ID {
			continue
		}
		if yearOK && car.Model == in.Model && car.Year == year {
			return apperror.Conflict("Car with the same model and year already exists.")
		}
	}

	if strings.IndexFunc(in.Make, unicode.IsDigit) >= 0 {
		return apperror.Validation("Make cannot contain numbers. Please enter a valid make.")
	}

	if !makePattern.MatchString(in.Make) {
		return apperror.Validation("Make must start with an uppercase letter and contain only letters, spaces, or hyphens.")
	}

	if !modelPattern.MatchString(in.Model) {
		return apperror.Validation("Model must start with a letter and can contain letters, numbers, spaces, or hyphens.")
	}

	if !yearOK {
		return apperror.Validation("Year must be a numeric value.")
	}

	return nil
}

// ValidateBookingSlot rejects a booking whose car, date and time are already taken
func ValidateBookingSlot(candidate Booking, existing []Booking) error {
	for _, b := range existing {
		if b.CarID == candidate.CarID && b.Date == candidate.Date && b.Time == candidate.Time {
			return apperror.Conflict("This car is already booked for that date and time")
		}
	}
	return nil
}

// Validate checks that every required booking field is present and returns the car id
func (r BookingRequest) Validate() (int, error) {
	if len(r.CarID) == 0 || string(r.CarID) == "null" {
		return 0, apperror.Validation("Missing required field: car_id")
	}

	required := []struct {
		name  string
		value *string
	}{
		{"date", r.Date},
		{"time", r.Time},
		{"return_date", r.ReturnDate},
		{"return_time", r.ReturnTime},
	}
	for _, field := range required {
		if field.value == nil {
			return 0, apperror.Validation("Missing required field: " + field.name)
		}
	}

	carID, ok := FlexibleInt(r.CarID)
	if !ok {
		return 0, apperror.Validation("car_id must be an integer")
	}

	return carID, nil
}

// Validate checks that car_id, text and rating are present and the rating is in range
func (r ReviewRequest) Validate() error {
	if r.CarID == nil || r.Text == nil || r.Rating == nil {
		return apperror.Validation("Missing required fields: car_id, text and rating")
	}
	return ValidateRating(*r.Rating)
}

// ValidateRating rejects ratings outside 1..5
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperror.Validation("Rating must be between 1 and 5")
	}
	return nil
}

// ValidateEmail reports whether username is a syntactically valid email
func ValidateEmail(username string) bool {
	return emailPattern.MatchString(username)
}

// ValidateRegistration rejects malformed or already registered usernames
func ValidateRegistration(username string, users []User) error {
	if !ValidateEmail(username) {
		return apperror.Validation("Username must be a valid email address")
	}

	for _, u := range users {
		if u.Username == username {
			return apperror.Conflict("Username already exists")
		}
	}

	return nil
}

// IntLiteral parses raw as a JSON integer literal
func IntLiteral(raw json.RawMessage) (int, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || strings.ContainsAny(s, ".eE\"") {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FlexibleInt parses raw as a JSON integer or a string holding one
func FlexibleInt(raw json.RawMessage) (int, bool) {
	if n, ok := IntLiteral(raw); ok {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
