package domain

import (
	"time"
)

type Role string

const (
	RoleSupplier  Role = "SUPPLIER"
	RoleVolunteer Role = "VOLUNTEER"
	RoleAdmin     Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsSuspended  bool      `json:"isSuspended"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// UserPreferences 是志愿者偏好的小时块和标签，用于筛选工作
type UserPreferences struct {
	HourBlocks []WorkHourBlock `json:"hourBlocks"`
	Tags       []string        `json:"tags"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
