package invoicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvoice() *Invoice {
	return &Invoice{
		InvoiceType:           "Sale Invoice",
		InvoiceDate:           "2025-05-13",
		SellerNTN:             "7000007",
		SellerBusinessName:    "Seller Co",
		SellerProvince:        "Sindh",
		SellerAddress:         "Karachi",
		BuyerBusinessName:     "Buyer Co",
		BuyerProvince:         "Punjab",
		BuyerAddress:          "Lahore",
		BuyerRegistrationType: "Unregistered",
		Items: []InvoiceItem{
			{
				HSCode:             "0101.2100",
				ProductDescription: "goods",
				Rate:               "18%",
				UOM:                "KG",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("structurally sound invoice has no violations", func(t *testing.T) {
		assert.Empty(t, Validate(validInvoice()))
	})

	t.Run("missing seller fields are reported", func(t *testing.T) {
		inv := validInvoice()
		inv.SellerNTN = ""
		inv.SellerProvince = ""

		violations := Validate(inv)

		assert.Contains(t, violations, "seller NTN/CNIC is required")
		assert.Contains(t, violations, "seller province is required")
	})

	t.Run("missing buyer fields are reported", func(t *testing.T) {
		inv := validInvoice()
		inv.BuyerBusinessName = ""
		inv.BuyerRegistrationType = ""

		violations := Validate(inv)

		assert.Contains(t, violations, "buyer business name is required")
		assert.Contains(t, violations, "buyer registration type is required")
	})

	t.Run("buyer NTN is optional", func(t *testing.T) {
		inv := validInvoice()
		inv.BuyerNTN = ""

		assert.Empty(t, Validate(inv))
	})

	t.Run("item violations carry one-based positions", func(t *testing.T) {
		inv := validInvoice()
		inv.Items = append(inv.Items, InvoiceItem{
			ProductDescription: "more goods",
			Rate:               "18%",
			UOM:                "KG",
		})

		violations := Validate(inv)

		require.Len(t, violations, 1)
		assert.Equal(t, "item 2: HS code is required", violations[0])
	})

	t.Run("all violations are collected, not just the first", func(t *testing.T) {
		inv := &Invoice{}

		violations := Validate(inv)

		assert.GreaterOrEqual(t, len(violations), 8)
	})
}
