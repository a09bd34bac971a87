package invoicing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SubmissionPayload is the authority's expected invoice document shape.
// Field names follow the remote API, not this codebase's conventions.
type SubmissionPayload struct {
	InvoiceType           string                  `json:"invoiceType"`
	InvoiceDate           string                  `json:"invoiceDate"`
	SellerNTNCNIC         string                  `json:"sellerNTNCNIC"`
	SellerBusinessName    string                  `json:"sellerBusinessName"`
	SellerProvince        string                  `json:"sellerProvince"`
	SellerAddress         string                  `json:"sellerAddress"`
	BuyerNTNCNIC          string                  `json:"buyerNTNCNIC,omitempty"`
	BuyerBusinessName     string                  `json:"buyerBusinessName"`
	BuyerProvince         string                  `json:"buyerProvince"`
	BuyerAddress          string                  `json:"buyerAddress"`
	BuyerRegistrationType string                  `json:"buyerRegistrationType"`
	InvoiceRefNo          string                  `json:"invoiceRefNo"`
	ScenarioID            string                  `json:"scenarioId"`
	Items                 []SubmissionPayloadItem `json:"items"`
}

// SubmissionPayloadItem is one line of the authority document
type SubmissionPayloadItem struct {
	HSCode             string `json:"hsCode"`
	ProductDescription string `json:"productDescription"`
	Rate               string `json:"rate"`
	UOM                string `json:"uoM"`

	Quantity                        float64 `json:"quantity"`
	TotalValues                     float64 `json:"totalValues"`
	ValueSalesExcludingST           float64 `json:"valueSalesExcludingST"`
	FixedNotifiedValueOrRetailPrice float64 `json:"fixedNotifiedValueOrRetailPrice"`
	SalesTaxApplicable              float64 `json:"salesTaxApplicable"`
	SalesTaxWithheldAtSource        float64 `json:"salesTaxWithheldAtSource"`

	// ExtraTax is sent only for non-exempt lines; see includeExtraTax
	ExtraTax *float64 `json:"extraTax,omitempty"`

	FurtherTax      float64 `json:"furtherTax"`
	FEDPayable      float64 `json:"fedPayable"`
	Discount        float64 `json:"discount"`
	SaleType        string  `json:"saleType"`
	SROScheduleNo   string  `json:"sroScheduleNo"`
	SROItemSerialNo string  `json:"sroItemSerialNo"`
}

// BuildSubmissionPayload normalizes an invoice and its items into the shape
// the tax authority expects. String fields pass through; numeric fields are
// rendered as numbers with null coercion already applied upstream.
func BuildSubmissionPayload(inv *Invoice, scenarioID string) SubmissionPayload {
	payload := SubmissionPayload{
		InvoiceType:           inv.InvoiceType,
		InvoiceDate:           inv.InvoiceDate,
		SellerNTNCNIC:         inv.SellerNTN,
		SellerBusinessName:    inv.SellerBusinessName,
		SellerProvince:        inv.SellerProvince,
		SellerAddress:         inv.SellerAddress,
		BuyerNTNCNIC:          inv.BuyerNTN,
		BuyerBusinessName:     inv.BuyerBusinessName,
		BuyerProvince:         inv.BuyerProvince,
		BuyerAddress:          inv.BuyerAddress,
		BuyerRegistrationType: inv.BuyerRegistrationType,
		InvoiceRefNo:          inv.InvoiceNumber,
		ScenarioID:            scenarioID,
	}
	if IsPlaceholderNumber(inv.InvoiceNumber) {
		payload.InvoiceRefNo = ""
	}

	payload.Items = make([]SubmissionPayloadItem, len(inv.Items))
	for i, item := range inv.Items {
		line := SubmissionPayloadItem{
			HSCode:                          item.HSCode,
			ProductDescription:              item.ProductDescription,
			Rate:                            item.Rate,
			UOM:                             item.UOM,
			Quantity:                        toFloat(item.Quantity),
			TotalValues:                     toFloat(item.TotalValues),
			ValueSalesExcludingST:           toFloat(item.ValueSalesExcludingST),
			FixedNotifiedValueOrRetailPrice: toFloat(item.FixedNotifiedValueOrRetailPrice),
			SalesTaxApplicable:              toFloat(item.SalesTaxApplicable),
			SalesTaxWithheldAtSource:        toFloat(item.SalesTaxWithheldAtSource),
			FurtherTax:                      toFloat(item.FurtherTax),
			FEDPayable:                      toFloat(item.FEDPayable),
			Discount:                        toFloat(item.Discount),
			SaleType:                        item.SaleType,
			SROScheduleNo:                   item.SROScheduleNo,
			SROItemSerialNo:                 item.SROItemSerialNo,
		}
		if includeExtraTax(&item) {
			v := toFloat(item.ExtraTax)
			line.ExtraTax = &v
		}
		payload.Items[i] = line
	}
	return payload
}

// includeExtraTax decides whether the extra-tax field is carried on the wire.
// Exempt sale types and zero/exempt rates never carry it, and the cleaned
// value must be strictly positive.
func includeExtraTax(item *InvoiceItem) bool {
	if item.ExtraTax == nil || !item.ExtraTax.IsPositive() {
		return false
	}
	if isExemptRate(item.Rate) {
		return false
	}
	if strings.Contains(strings.ToLower(item.SaleType), "exempt") {
		return false
	}
	return true
}

func isExemptRate(rate string) bool {
	r := strings.ToLower(strings.TrimSpace(rate))
	return r == "0%" || r == "0" || r == "exempt"
}

func toFloat(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
