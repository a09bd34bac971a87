package invoicing

import "fmt"

// Validate performs the structural validation used by save-and-validate.
// It returns the full list of violations; an empty slice means the document
// is structurally sound. Storage is never touched here.
func Validate(inv *Invoice) []string {
	var violations []string

	if inv.SellerNTN == "" {
		violations = append(violations, "seller NTN/CNIC is required")
	}
	if inv.SellerBusinessName == "" {
		violations = append(violations, "seller business name is required")
	}
	if inv.SellerProvince == "" {
		violations = append(violations, "seller province is required")
	}
	if inv.SellerAddress == "" {
		violations = append(violations, "seller address is required")
	}

	if inv.BuyerBusinessName == "" {
		violations = append(violations, "buyer business name is required")
	}
	if inv.BuyerProvince == "" {
		violations = append(violations, "buyer province is required")
	}
	if inv.BuyerAddress == "" {
		violations = append(violations, "buyer address is required")
	}
	if inv.BuyerRegistrationType == "" {
		violations = append(violations, "buyer registration type is required")
	}

	for i, item := range inv.Items {
		if item.HSCode == "" {
			violations = append(violations, fmt.Sprintf("item %d: HS code is required", i+1))
		}
		if item.ProductDescription == "" {
			violations = append(violations, fmt.Sprintf("item %d: product description is required", i+1))
		}
		if item.Rate == "" {
			violations = append(violations, fmt.Sprintf("item %d: rate is required", i+1))
		}
		if item.UOM == "" {
			violations = append(violations, fmt.Sprintf("item %d: unit of measure is required", i+1))
		}
	}

	return violations
}
