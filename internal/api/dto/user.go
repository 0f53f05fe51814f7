package dto

import (
	"geo-registration-service/internal/domain"
	"time"
)

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func (r RegisterRequest) Profile() domain.Profile {
	return domain.Profile{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		DOB:       r.DOB,
		Address:   r.Address,
		Phone:     r.Phone,
	}
}

type UpdateUserRequest struct {
	RegisterRequest
	Email string `json:"email"`
}

func (r UpdateUserRequest) ProfileUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{Profile: r.Profile(), Email: r.Email}
}

// ProfileForm is the register and profile page form. Email is only
// posted by the profile page.
type ProfileForm struct {
	FirstName string `schema:"firstName"`
	LastName  string `schema:"lastName"`
	DOB       string `schema:"dob"`
	Address   string `schema:"address"`
	Phone     string `schema:"phone"`
	Email     string `schema:"email"`
}

func (f ProfileForm) Profile() domain.Profile {
	return domain.Profile{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		DOB:       f.DOB,
		Address:   f.Address,
		Phone:     f.Phone,
	}
}

func (f ProfileForm) ProfileUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{Profile: f.Profile(), Email: f.Email}
}

// FormFromUser prefills the profile page.
func FormFromUser(u *domain.User) ProfileForm {
	return ProfileForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		DOB:       domain.FormatDOB(u.DOB),
		Address:   u.Address,
		Phone:     u.Phone,
		Email:     u.Email,
	}
}

type UserResponse struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	DOB       string    `json:"dob"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		DOB:       domain.FormatDOB(u.DOB),
		Address:   u.Address,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type ErrorResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	MaxDistanceKm *float64 `json:"max_distance_km,omitempty"`
}
