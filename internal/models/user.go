package models

import (
	"time"
)

// Subscription states observed from the payment collaborator.
const (
	SubscriptionNone   = "none"
	SubscriptionActive = "active"
)

// UserAuth represents a registered user.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type UserAuth struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"unique;not null" json:"email"`
	Name               string    `gorm:"not null" json:"name"`
	Password           string    `gorm:"not null" json:"-"`
	IsAdmin            bool      `gorm:"default:false" json:"isAdmin"`
	GenerationCount    int       `gorm:"not null;default:0" json:"generationCount"`
	SubscriptionStatus string    `gorm:"not null;default:'none'" json:"subscriptionStatus"`
	CreatedAt          time.Time `gorm:"column:date_created" json:"dateCreated"`
}

// TableName specifies the table name for UserAuth model
func (UserAuth) TableName() string {
	return "user_auths"
}

// Exempt reports whether the user generates without counting against the
// free quota: admins and active subscribers.
func (u *UserAuth) Exempt() bool {
	return u.IsAdmin || u.SubscriptionStatus == SubscriptionActive
}
