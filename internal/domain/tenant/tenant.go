package tenant

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Environment selects which tax-authority credential a tenant submits with
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	return e == EnvironmentSandbox || e == EnvironmentProduction
}

// Tenant is a directory entry in the master database. Each tenant owns one
// physical database named DatabaseName; all of its buyers, invoices and
// invoice items live there and nowhere else.
type Tenant struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	BusinessName string
	NTN          string // seller business identifier (NTN or CNIC)
	Province     string
	Address      string

	DatabaseName string

	SandboxToken    string
	ProductionToken string
	Environment     Environment

	IsActive      bool
	DeactivatedAt *time.Time
}

var dbNameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// NewTenant creates a tenant directory entry with a generated opaque id and a
// derived database name. The physical database does not exist yet; that is the
// provisioner's job.
func NewTenant(businessName, ntn, province, address string) *Tenant {
	id := uuid.New()
	slug := dbNameSanitizer.ReplaceAllString(strings.ToLower(businessName), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 24 {
		slug = slug[:24]
	}
	if slug == "" {
		slug = "tenant"
	}
	now := time.Now()
	return &Tenant{
		ID:           id,
		CreatedAt:    now,
		UpdatedAt:    now,
		BusinessName: businessName,
		NTN:          ntn,
		Province:     province,
		Address:      address,
		DatabaseName: fmt.Sprintf("tenant_%s_%s", slug, strings.ReplaceAll(id.String()[:8], "-", "")),
		Environment:  EnvironmentSandbox,
		IsActive:     true,
	}
}

// Credential returns the bearer token for the tenant's configured environment
func (t *Tenant) Credential() string {
	if t.Environment == EnvironmentProduction {
		return t.ProductionToken
	}
	return t.SandboxToken
}

// Deactivate soft-deletes the tenant. It stays in the directory but becomes
// invisible to all lookups.
func (t *Tenant) Deactivate() {
	now := time.Now()
	t.IsActive = false
	t.DeactivatedAt = &now
	t.UpdatedAt = now
}

// Reactivate makes a deactivated tenant visible again
func (t *Tenant) Reactivate() {
	t.IsActive = true
	t.DeactivatedAt = nil
	t.UpdatedAt = time.Now()
}
