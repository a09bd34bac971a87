package invoicing

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSaved     Status = "saved"
	StatusValidated Status = "validated"
	StatusSubmitted Status = "submitted"
	StatusPosted    Status = "posted"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSaved, StatusValidated, StatusSubmitted, StatusPosted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusPosted
}

// CanUpdate returns true if a draft upsert may replace this invoice
func (s Status) CanUpdate() bool {
	return s == StatusDraft
}

// CanSubmit returns true if the invoice may be sent to the tax authority
func (s Status) CanSubmit() bool {
	return s == StatusDraft
}

// Placeholder prefixes for invoices that have not been issued a number by the
// tax authority yet.
const (
	draftNumberPrefix     = "DRAFT_"
	validatedNumberPrefix = "SAVED_"
)

// SystemInvoiceIDFormat is the tenant-scoped display sequence format
const SystemInvoiceIDFormat = "INV-%04d"

// FormatSystemInvoiceID renders a sequence value as a display number
func FormatSystemInvoiceID(seq int64) string {
	return fmt.Sprintf(SystemInvoiceIDFormat, seq)
}

// NewDraftNumber generates a placeholder invoice number for a draft
func NewDraftNumber() string {
	return newPlaceholder(draftNumberPrefix)
}

// NewValidatedNumber generates a placeholder invoice number for a validated draft
func NewValidatedNumber() string {
	return newPlaceholder(validatedNumberPrefix)
}

const placeholderAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newPlaceholder(prefix string) string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = placeholderAlphabet[rand.Intn(len(placeholderAlphabet))]
	}
	return fmt.Sprintf("%s%d_%s", prefix, time.Now().UnixMilli(), string(b))
}

// IsPlaceholderNumber reports whether an invoice number is a locally generated
// placeholder rather than a business-facing number.
func IsPlaceholderNumber(number string) bool {
	return strings.HasPrefix(number, draftNumberPrefix) || strings.HasPrefix(number, validatedNumberPrefix)
}

// Invoice is the aggregate root of the invoice lifecycle. Seller and buyer
// fields are snapshots denormalized at creation time, not references.
type Invoice struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	InvoiceNumber   string
	SystemInvoiceID string
	Status          Status

	InvoiceType string
	InvoiceDate string
	ScenarioID  *string

	SellerNTN          string
	SellerBusinessName string
	SellerProvince     string
	SellerAddress      string

	BuyerNTN              string
	BuyerBusinessName     string
	BuyerProvince         string
	BuyerAddress          string
	BuyerRegistrationType string

	// FBRInvoiceNumber is populated only after a successful submission
	FBRInvoiceNumber *string

	Items []InvoiceItem
}

// InvoiceItem is a line of an invoice. It belongs to exactly one invoice and
// is deleted when its parent is deleted or replaced.
type InvoiceItem struct {
	ID        uint64
	InvoiceID uint64

	HSCode             string
	ProductDescription string
	Rate               string
	UOM                string

	Quantity                        *decimal.Decimal
	TotalValues                     *decimal.Decimal
	ValueSalesExcludingST           *decimal.Decimal
	FixedNotifiedValueOrRetailPrice *decimal.Decimal
	SalesTaxApplicable              *decimal.Decimal
	SalesTaxWithheldAtSource        *decimal.Decimal
	// ExtraTax is persisted only when its cleaned value is strictly positive;
	// absence is semantically distinct from zero.
	ExtraTax        *decimal.Decimal
	FurtherTax      *decimal.Decimal
	FEDPayable      *decimal.Decimal
	Discount        *decimal.Decimal
	SaleType        string
	SROScheduleNo   string
	SROItemSerialNo string
}

// CleanExtraTax drops the extra-tax value unless it is strictly positive
func (it *InvoiceItem) CleanExtraTax() {
	if it.ExtraTax != nil && !it.ExtraTax.IsPositive() {
		it.ExtraTax = nil
	}
}

// MarkPosted applies a successful submission outcome to the invoice: the
// business number is overwritten with the authority-issued number and the
// authority reference is recorded.
func (inv *Invoice) MarkPosted(authorityNumber string) {
	inv.Status = StatusPosted
	inv.InvoiceNumber = authorityNumber
	ref := authorityNumber
	inv.FBRInvoiceNumber = &ref
	inv.UpdatedAt = time.Now()
}
