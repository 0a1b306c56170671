package user

import (
	"errors"
	"time"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone_number"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=1,max=120"`
	Address  string `json:"address" binding:"required,min=1,max=300"`
	Phone    string `json:"phone_number" binding:"required,min=3,max=40"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=120"`
	Address  *string `json:"address" binding:"omitempty,min=1,max=300"`
	Phone    *string `json:"phone_number" binding:"omitempty,min=3,max=40"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Address == nil && r.Phone == nil && r.Password == nil
}
