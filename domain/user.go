package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin  = "ADMIN"
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFarmer, RoleBuyer:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	MobileNumber *string   `gorm:"uniqueIndex" json:"mobile_number,omitempty"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null" json:"role"` // ADMIN | FARMER | BUYER
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Farmer is the producer profile, linked to a User by email equality only.
type Farmer struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	GetAllUsers(ctx context.Context) ([]User, error)
}

type FarmerRepository interface {
	CreateFarmer(ctx context.Context, farmer *Farmer) error
	GetFarmerByEmail(ctx context.Context, email string) (*Farmer, error)
}
