package invoicing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/invoicing"
)

// InvoiceItemInput is one request line. Numeric fields accept numbers,
// numeric strings, empty strings, "N/A" and nulls; cleaning happens during
// unmarshalling.
type InvoiceItemInput struct {
	HSCode             string `json:"hsCode"`
	ProductDescription string `json:"productDescription"`
	Rate               string `json:"rate"`
	UOM                string `json:"uoM"`

	Quantity                        invoicing.Numeric `json:"quantity"`
	TotalValues                     invoicing.Numeric `json:"totalValues"`
	ValueSalesExcludingST           invoicing.Numeric `json:"valueSalesExcludingST"`
	FixedNotifiedValueOrRetailPrice invoicing.Numeric `json:"fixedNotifiedValueOrRetailPrice"`
	SalesTaxApplicable              invoicing.Numeric `json:"salesTaxApplicable"`
	SalesTaxWithheldAtSource        invoicing.Numeric `json:"salesTaxWithheldAtSource"`
	ExtraTax                        invoicing.Numeric `json:"extraTax"`
	FurtherTax                      invoicing.Numeric `json:"furtherTax"`
	FEDPayable                      invoicing.Numeric `json:"fedPayable"`
	Discount                        invoicing.Numeric `json:"discount"`

	SaleType        string `json:"saleType"`
	SROScheduleNo   string `json:"sroScheduleNo"`
	SROItemSerialNo string `json:"sroItemSerialNo"`
}

// InvoiceInput is the request body for create, draft and validate operations
type InvoiceInput struct {
	ID uint64 `json:"id"`

	InvoiceRefNo string  `json:"invoiceRefNo"`
	InvoiceType  string  `json:"invoiceType"`
	InvoiceDate  string  `json:"invoiceDate"`
	ScenarioID   *string `json:"scenarioId"`

	SellerNTNCNIC      string `json:"sellerNTNCNIC"`
	SellerBusinessName string `json:"sellerBusinessName"`
	SellerProvince     string `json:"sellerProvince"`
	SellerAddress      string `json:"sellerAddress"`

	BuyerNTNCNIC          string `json:"buyerNTNCNIC"`
	BuyerBusinessName     string `json:"buyerBusinessName"`
	BuyerProvince         string `json:"buyerProvince"`
	BuyerAddress          string `json:"buyerAddress"`
	BuyerRegistrationType string `json:"buyerRegistrationType"`

	Items []InvoiceItemInput `json:"items"`
}

// ToDomain converts the input to a domain invoice with numeric cleaning and
// the extra-tax positivity rule applied.
func (in *InvoiceInput) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		ID:                    in.ID,
		InvoiceNumber:         in.InvoiceRefNo,
		InvoiceType:           in.InvoiceType,
		InvoiceDate:           in.InvoiceDate,
		ScenarioID:            in.ScenarioID,
		SellerNTN:             in.SellerNTNCNIC,
		SellerBusinessName:    in.SellerBusinessName,
		SellerProvince:        in.SellerProvince,
		SellerAddress:         in.SellerAddress,
		BuyerNTN:              in.BuyerNTNCNIC,
		BuyerBusinessName:     in.BuyerBusinessName,
		BuyerProvince:         in.BuyerProvince,
		BuyerAddress:          in.BuyerAddress,
		BuyerRegistrationType: in.BuyerRegistrationType,
	}
	inv.Items = make([]invoicing.InvoiceItem, len(in.Items))
	for i, item := range in.Items {
		domainItem := invoicing.InvoiceItem{
			HSCode:                          item.HSCode,
			ProductDescription:              item.ProductDescription,
			Rate:                            item.Rate,
			UOM:                             item.UOM,
			Quantity:                        item.Quantity.Decimal(),
			TotalValues:                     item.TotalValues.Decimal(),
			ValueSalesExcludingST:           item.ValueSalesExcludingST.Decimal(),
			FixedNotifiedValueOrRetailPrice: item.FixedNotifiedValueOrRetailPrice.Decimal(),
			SalesTaxApplicable:              item.SalesTaxApplicable.Decimal(),
			SalesTaxWithheldAtSource:        item.SalesTaxWithheldAtSource.Decimal(),
			ExtraTax:                        item.ExtraTax.Decimal(),
			FurtherTax:                      item.FurtherTax.Decimal(),
			FEDPayable:                      item.FEDPayable.Decimal(),
			Discount:                        item.Discount.Decimal(),
			SaleType:                        item.SaleType,
			SROScheduleNo:                   item.SROScheduleNo,
			SROItemSerialNo:                 item.SROItemSerialNo,
		}
		domainItem.CleanExtraTax()
		inv.Items[i] = domainItem
	}
	return inv
}

// SubmitRequest selects the invoice and scenario for an authority submission
type SubmitRequest struct {
	InvoiceID  uint64  `json:"invoiceId" binding:"required"`
	ScenarioID *string `json:"scenarioId"`
}

// ListRequest narrows and pages invoice listings
type ListRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// InvoiceItemResponse is one invoice line in responses
type InvoiceItemResponse struct {
	ID                 uint64 `json:"id"`
	HSCode             string `json:"hsCode"`
	ProductDescription string `json:"productDescription"`
	Rate               string `json:"rate"`
	UOM                string `json:"uoM"`

	Quantity                        *decimal.Decimal `json:"quantity"`
	TotalValues                     *decimal.Decimal `json:"totalValues"`
	ValueSalesExcludingST           *decimal.Decimal `json:"valueSalesExcludingST"`
	FixedNotifiedValueOrRetailPrice *decimal.Decimal `json:"fixedNotifiedValueOrRetailPrice"`
	SalesTaxApplicable              *decimal.Decimal `json:"salesTaxApplicable"`
	SalesTaxWithheldAtSource        *decimal.Decimal `json:"salesTaxWithheldAtSource"`
	ExtraTax                        *decimal.Decimal `json:"extraTax,omitempty"`
	FurtherTax                      *decimal.Decimal `json:"furtherTax"`
	FEDPayable                      *decimal.Decimal `json:"fedPayable"`
	Discount                        *decimal.Decimal `json:"discount"`

	SaleType        string `json:"saleType"`
	SROScheduleNo   string `json:"sroScheduleNo"`
	SROItemSerialNo string `json:"sroItemSerialNo"`
}

// InvoiceResponse is the outward view of an invoice
type InvoiceResponse struct {
	ID              uint64  `json:"id"`
	InvoiceNumber   string  `json:"invoiceNumber"`
	SystemInvoiceID string  `json:"systemInvoiceId"`
	Status          string  `json:"status"`
	InvoiceType     string  `json:"invoiceType"`
	InvoiceDate     string  `json:"invoiceDate"`
	ScenarioID      *string `json:"scenarioId,omitempty"`

	SellerNTNCNIC      string `json:"sellerNTNCNIC"`
	SellerBusinessName string `json:"sellerBusinessName"`
	SellerProvince     string `json:"sellerProvince"`
	SellerAddress      string `json:"sellerAddress"`

	BuyerNTNCNIC          string `json:"buyerNTNCNIC"`
	BuyerBusinessName     string `json:"buyerBusinessName"`
	BuyerProvince         string `json:"buyerProvince"`
	BuyerAddress          string `json:"buyerAddress"`
	BuyerRegistrationType string `json:"buyerRegistrationType"`

	FBRInvoiceNumber *string `json:"fbrInvoiceNumber,omitempty"`

	Items     []InvoiceItemResponse `json:"items"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// NewInvoiceResponse converts a domain invoice to its outward view
func NewInvoiceResponse(inv *invoicing.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:                    inv.ID,
		InvoiceNumber:         inv.InvoiceNumber,
		SystemInvoiceID:       inv.SystemInvoiceID,
		Status:                string(inv.Status),
		InvoiceType:           inv.InvoiceType,
		InvoiceDate:           inv.InvoiceDate,
		ScenarioID:            inv.ScenarioID,
		SellerNTNCNIC:         inv.SellerNTN,
		SellerBusinessName:    inv.SellerBusinessName,
		SellerProvince:        inv.SellerProvince,
		SellerAddress:         inv.SellerAddress,
		BuyerNTNCNIC:          inv.BuyerNTN,
		BuyerBusinessName:     inv.BuyerBusinessName,
		BuyerProvince:         inv.BuyerProvince,
		BuyerAddress:          inv.BuyerAddress,
		BuyerRegistrationType: inv.BuyerRegistrationType,
		FBRInvoiceNumber:      inv.FBRInvoiceNumber,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
	resp.Items = make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		resp.Items[i] = InvoiceItemResponse{
			ID:                              item.ID,
			HSCode:                          item.HSCode,
			ProductDescription:              item.ProductDescription,
			Rate:                            item.Rate,
			UOM:                             item.UOM,
			Quantity:                        item.Quantity,
			TotalValues:                     item.TotalValues,
			ValueSalesExcludingST:           item.ValueSalesExcludingST,
			FixedNotifiedValueOrRetailPrice: item.FixedNotifiedValueOrRetailPrice,
			SalesTaxApplicable:              item.SalesTaxApplicable,
			SalesTaxWithheldAtSource:        item.SalesTaxWithheldAtSource,
			ExtraTax:                        item.ExtraTax,
			FurtherTax:                      item.FurtherTax,
			FEDPayable:                      item.FEDPayable,
			Discount:                        item.Discount,
			SaleType:                        item.SaleType,
			SROScheduleNo:                   item.SROScheduleNo,
			SROItemSerialNo:                 item.SROItemSerialNo,
		}
	}
	return resp
}

// InvoiceListResponse pages invoice listings
type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// LocatedInvoiceResponse is the public document-retrieval view: the invoice
// together with the tenant that issued it.
type LocatedInvoiceResponse struct {
	Invoice *InvoiceResponse `json:"invoice"`
	Tenant  LocatedTenant    `json:"tenant"`
}

// LocatedTenant identifies the issuing tenant without exposing credentials
type LocatedTenant struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
	NTN          string `json:"ntn"`
	Province     string `json:"province"`
}
