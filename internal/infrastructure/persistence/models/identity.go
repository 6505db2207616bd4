package models

import (
	"time"

	"github.com/codeforge/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	GoogleSub   string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email       string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name        string              `gorm:"type:varchar(120)"`
	Picture     string              `gorm:"type:varchar(2048)"`
	Status      identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Visits      int                 `gorm:"not null;default:0"`
	LastLoginAt *time.Time          `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:  m.BaseModel.ToDomain(),
		GoogleSub:   m.GoogleSub,
		Email:       m.Email,
		Name:        m.Name,
		Picture:     m.Picture,
		Status:      m.Status,
		Visits:      m.Visits,
		LastLoginAt: m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.GoogleSub = u.GoogleSub
	m.Email = u.Email
	m.Name = u.Name
	m.Picture = u.Picture
	m.Status = u.Status
	m.Visits = u.Visits
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
