package domain

import "time"

// Registered user. Email is the natural key: at most one User exists per email.
type User struct {
	ID        int
	Email     string
	FirstName string
	LastName  string
	DOB       time.Time
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds the user-editable attributes as submitted by a client.
// DOB is kept raw so that parsing failures can be reported as ErrInvalidDateOfBirth.
type Profile struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	DOB       string `json:"dob" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

// ProfileUpdate is a full replacement of a user's attributes, email included.
type ProfileUpdate struct {
	Profile
	Email string `json:"email" validate:"required"`
}

// Apply copies the profile attributes onto u. The caller has already parsed dob.
func (u *User) Apply(p Profile, dob time.Time) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.DOB = dob
	u.Address = p.Address
	u.Phone = p.Phone
}
