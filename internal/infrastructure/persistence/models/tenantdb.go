package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/invoicing"
)

// BuyerModel is the persistence model for buyers in a tenant database
type BuyerModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	BusinessName     string `gorm:"type:varchar(200);not null"`
	NTNCNIC          string `gorm:"type:varchar(20);index"`
	Province         string `gorm:"type:varchar(100)"`
	Address          string `gorm:"type:varchar(500)"`
	RegistrationType string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (BuyerModel) TableName() string {
	return "buyers"
}

// ToDomain converts the persistence model to a domain Buyer
func (m *BuyerModel) ToDomain() *invoicing.Buyer {
	return &invoicing.Buyer{
		ID:               m.ID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		BusinessName:     m.BusinessName,
		NTNCNIC:          m.NTNCNIC,
		Province:         m.Province,
		Address:          m.Address,
		RegistrationType: m.RegistrationType,
	}
}

// FromDomain populates the persistence model from a domain Buyer
func (m *BuyerModel) FromDomain(b *invoicing.Buyer) {
	m.ID = b.ID
	m.CreatedAt = b.CreatedAt
	m.UpdatedAt = b.UpdatedAt
	m.BusinessName = b.BusinessName
	m.NTNCNIC = b.NTNCNIC
	m.Province = b.Province
	m.Address = b.Address
	m.RegistrationType = b.RegistrationType
}

// InvoiceModel is the persistence model for invoices in a tenant database.
// The business invoice number carries a unique index; placeholder numbers are
// unique by construction so the index holds for them too.
type InvoiceModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	InvoiceNumber   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	SystemInvoiceID string `gorm:"type:varchar(20);not null;index"`
	Status          string `gorm:"type:varchar(20);not null;default:'draft';index"`

	InvoiceType string  `gorm:"type:varchar(50)"`
	InvoiceDate string  `gorm:"type:varchar(20)"`
	ScenarioID  *string `gorm:"type:varchar(20)"`

	SellerNTN          string `gorm:"type:varchar(20)"`
	SellerBusinessName string `gorm:"type:varchar(200)"`
	SellerProvince     string `gorm:"type:varchar(100)"`
	SellerAddress      string `gorm:"type:varchar(500)"`

	BuyerNTN              string `gorm:"type:varchar(20)"`
	BuyerBusinessName     string `gorm:"type:varchar(200)"`
	BuyerProvince         string `gorm:"type:varchar(100)"`
	BuyerAddress          string `gorm:"type:varchar(500)"`
	BuyerRegistrationType string `gorm:"type:varchar(50)"`

	FBRInvoiceNumber *string `gorm:"type:varchar(100)"`

	Items []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		ID:                    m.ID,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		InvoiceNumber:         m.InvoiceNumber,
		SystemInvoiceID:       m.SystemInvoiceID,
		Status:                invoicing.Status(m.Status),
		InvoiceType:           m.InvoiceType,
		InvoiceDate:           m.InvoiceDate,
		ScenarioID:            m.ScenarioID,
		SellerNTN:             m.SellerNTN,
		SellerBusinessName:    m.SellerBusinessName,
		SellerProvince:        m.SellerProvince,
		SellerAddress:         m.SellerAddress,
		BuyerNTN:              m.BuyerNTN,
		BuyerBusinessName:     m.BuyerBusinessName,
		BuyerProvince:         m.BuyerProvince,
		BuyerAddress:          m.BuyerAddress,
		BuyerRegistrationType: m.BuyerRegistrationType,
		FBRInvoiceNumber:      m.FBRInvoiceNumber,
	}
	inv.Items = make([]invoicing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.ID = inv.ID
	m.CreatedAt = inv.CreatedAt
	m.UpdatedAt = inv.UpdatedAt
	m.InvoiceNumber = inv.InvoiceNumber
	m.SystemInvoiceID = inv.SystemInvoiceID
	m.Status = string(inv.Status)
	m.InvoiceType = inv.InvoiceType
	m.InvoiceDate = inv.InvoiceDate
	m.ScenarioID = inv.ScenarioID
	m.SellerNTN = inv.SellerNTN
	m.SellerBusinessName = inv.SellerBusinessName
	m.SellerProvince = inv.SellerProvince
	m.SellerAddress = inv.SellerAddress
	m.BuyerNTN = inv.BuyerNTN
	m.BuyerBusinessName = inv.BuyerBusinessName
	m.BuyerProvince = inv.BuyerProvince
	m.BuyerAddress = inv.BuyerAddress
	m.BuyerRegistrationType = inv.BuyerRegistrationType
	m.FBRInvoiceNumber = inv.FBRInvoiceNumber
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i].FromDomain(&item)
	}
}

// InvoiceItemModel is the persistence model for invoice line items.
// Numeric fields are nullable; null is semantically distinct from zero.
type InvoiceItemModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	InvoiceID uint64 `gorm:"not null;index"`

	HSCode             string `gorm:"type:varchar(20)"`
	ProductDescription string `gorm:"type:varchar(500)"`
	Rate               string `gorm:"type:varchar(20)"`
	UOM                string `gorm:"type:varchar(50)"`

	Quantity                        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalValues                     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ValueSalesExcludingST           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	FixedNotifiedValueOrRetailPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SalesTaxApplicable              *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SalesTaxWithheldAtSource        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ExtraTax                        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	FurtherTax                      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	FEDPayable                      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Discount                        *decimal.Decimal `gorm:"type:decimal(18,4)"`

	SaleType        string `gorm:"type:varchar(100)"`
	SROScheduleNo   string `gorm:"type:varchar(50)"`
	SROItemSerialNo string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() *invoicing.InvoiceItem {
	return &invoicing.InvoiceItem{
		ID:                              m.ID,
		InvoiceID:                       m.InvoiceID,
		HSCode:                          m.HSCode,
		ProductDescription:              m.ProductDescription,
		Rate:                            m.Rate,
		UOM:                             m.UOM,
		Quantity:                        m.Quantity,
		TotalValues:                     m.TotalValues,
		ValueSalesExcludingST:           m.ValueSalesExcludingST,
		FixedNotifiedValueOrRetailPrice: m.FixedNotifiedValueOrRetailPrice,
		SalesTaxApplicable:              m.SalesTaxApplicable,
		SalesTaxWithheldAtSource:        m.SalesTaxWithheldAtSource,
		ExtraTax:                        m.ExtraTax,
		FurtherTax:                      m.FurtherTax,
		FEDPayable:                      m.FEDPayable,
		Discount:                        m.Discount,
		SaleType:                        m.SaleType,
		SROScheduleNo:                   m.SROScheduleNo,
		SROItemSerialNo:                 m.SROItemSerialNo,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(item *invoicing.InvoiceItem) {
	m.ID = item.ID
	m.InvoiceID = item.InvoiceID
	m.HSCode = item.HSCode
	m.ProductDescription = item.ProductDescription
	m.Rate = item.Rate
	m.UOM = item.UOM
	m.Quantity = item.Quantity
	m.TotalValues = item.TotalValues
	m.ValueSalesExcludingST = item.ValueSalesExcludingST
	m.FixedNotifiedValueOrRetailPrice = item.FixedNotifiedValueOrRetailPrice
	m.SalesTaxApplicable = item.SalesTaxApplicable
	m.SalesTaxWithheldAtSource = item.SalesTaxWithheldAtSource
	m.ExtraTax = item.ExtraTax
	m.FurtherTax = item.FurtherTax
	m.FEDPayable = item.FEDPayable
	m.Discount = item.Discount
	m.SaleType = item.SaleType
	m.SROScheduleNo = item.SROScheduleNo
	m.SROItemSerialNo = item.SROItemSerialNo
}

// InvoiceSequenceModel backs per-tenant monotonic counters. The row is locked
// FOR UPDATE inside the same transaction as the insert that consumes it.
type InvoiceSequenceModel struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
