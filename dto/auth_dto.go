package dto

import "agrizen/domain"

type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=3,max=100"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobileNumber" binding:"omitempty,mobile"`
	Password     string `json:"password" binding:"required,min=8,max=64,strongpassword"`
	Role         string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPRequest selects a channel; the matching identifier field must be
// set. Role defaults to BUYER as in the original flow.
type OTPRequest struct {
	Type         string `json:"type" binding:"required,oneof=email mobile EMAIL MOBILE"`
	Email        string `json:"email" binding:"omitempty,email"`
	MobileNumber string `json:"mobileNumber" binding:"omitempty,mobile"`
	Role         string `json:"role"`
}

type OTPVerifyRequest struct {
	Type         string `json:"type" binding:"required,oneof=email mobile EMAIL MOBILE"`
	Email        string `json:"email" binding:"omitempty,email"`
	MobileNumber string `json:"mobileNumber" binding:"omitempty,mobile"`
	OTP          string `json:"otp" binding:"required"`
}

// Identifier returns the identifier matching the selected channel.
func (r OTPRequest) Identifier(channel domain.Channel) string {
	if channel == domain.ChannelEmail {
		return r.Email
	}
	return r.MobileNumber
}

func (r OTPVerifyRequest) Identifier(channel domain.Channel) string {
	if channel == domain.ChannelEmail {
		return r.Email
	}
	return r.MobileNumber
}

type UserResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNumber *string `json:"mobileNumber,omitempty"`
	Role         string  `json:"role"`
}

func MakeUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Role:         user.Role,
	}
}
