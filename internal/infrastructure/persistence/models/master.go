package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/identity"
	"github.com/invoicehub/backend/internal/domain/tenant"
)

// TenantModel is the persistence model for the tenant directory in the
// master database.
type TenantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	BusinessName string `gorm:"type:varchar(200);not null"`
	NTN          string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Province     string `gorm:"type:varchar(100);not null"`
	Address      string `gorm:"type:varchar(500)"`

	DatabaseName string `gorm:"type:varchar(100);not null;uniqueIndex"`

	SandboxToken    string `gorm:"type:varchar(200)"`
	ProductionToken string `gorm:"type:varchar(200)"`
	Environment     string `gorm:"type:varchar(20);not null;default:'sandbox'"`

	IsActive      bool `gorm:"not null;default:true;index"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *tenant.Tenant {
	return &tenant.Tenant{
		ID:              m.ID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		BusinessName:    m.BusinessName,
		NTN:             m.NTN,
		Province:        m.Province,
		Address:         m.Address,
		DatabaseName:    m.DatabaseName,
		SandboxToken:    m.SandboxToken,
		ProductionToken: m.ProductionToken,
		Environment:     tenant.Environment(m.Environment),
		IsActive:        m.IsActive,
		DeactivatedAt:   m.DeactivatedAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *tenant.Tenant) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.BusinessName = t.BusinessName
	m.NTN = t.NTN
	m.Province = t.Province
	m.Address = t.Address
	m.DatabaseName = t.DatabaseName
	m.SandboxToken = t.SandboxToken
	m.ProductionToken = t.ProductionToken
	m.Environment = string(t.Environment)
	m.IsActive = t.IsActive
	m.DeactivatedAt = t.DeactivatedAt
}

// AdminUserModel is the persistence model for administrators in the master
// database.
type AdminUserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Email        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain AdminUser
func (m *AdminUserModel) ToDomain() *identity.AdminUser {
	return &identity.AdminUser{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain AdminUser
func (m *AdminUserModel) FromDomain(u *identity.AdminUser) {
	m.ID = u.ID
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.IsActive = u.IsActive
}
