package tenant

import (
	"time"

	"github.com/invoicehub/backend/internal/domain/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

// CreateTenantRequest contains input for tenant provisioning
type CreateTenantRequest struct {
	BusinessName    string `json:"businessName" binding:"required"`
	NTN             string `json:"ntn" binding:"required"`
	Province        string `json:"province" binding:"required"`
	Address         string `json:"address"`
	SandboxToken    string `json:"sandboxToken"`
	ProductionToken string `json:"productionToken"`
	Environment     string `json:"environment"`
}

// UpdateCredentialsRequest updates a tenant's authority tokens and environment
type UpdateCredentialsRequest struct {
	SandboxToken    *string `json:"sandboxToken"`
	ProductionToken *string `json:"productionToken"`
	Environment     *string `json:"environment"`
}

// TenantResponse is the outward view of a tenant directory entry. Tokens are
// never echoed back.
type TenantResponse struct {
	ID            string     `json:"id"`
	BusinessName  string     `json:"businessName"`
	NTN           string     `json:"ntn"`
	Province      string     `json:"province"`
	Address       string     `json:"address"`
	DatabaseName  string     `json:"databaseName"`
	Environment   string     `json:"environment"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

// NewTenantResponse converts a domain tenant to its outward view
func NewTenantResponse(t *tenant.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:            t.ID.String(),
		BusinessName:  t.BusinessName,
		NTN:           t.NTN,
		Province:      t.Province,
		Address:       t.Address,
		DatabaseName:  t.DatabaseName,
		Environment:   string(t.Environment),
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		DeactivatedAt: t.DeactivatedAt,
	}
}

// ReconcileReport is the per-tenant outcome of a schema reconciliation sweep
type ReconcileReport struct {
	TenantID     string                       `json:"tenantId"`
	BusinessName string                       `json:"businessName"`
	Database     string                       `json:"database"`
	Result       *persistence.ReconcileResult `json:"result,omitempty"`
	Error        string                       `json:"error,omitempty"`
}
