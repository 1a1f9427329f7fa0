package models

import (
	"time"
)

// Staff roles. Only admin accounts may mutate request statuses.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	FirstName    string    `json:"firstName" gorm:"column:first_name;not null;type:varchar(255)"`
	LastName     string    `json:"lastName" gorm:"column:last_name;not null;type:varchar(255)"`
	Email        string    `json:"email" gorm:"column:email;unique;not null;type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;type:text"`
	Role         string    `json:"role" gorm:"column:role;default:'staff';type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;type:timestamp with time zone"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime;type:timestamp with time zone"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
