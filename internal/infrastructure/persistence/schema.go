package persistence

// ColumnSpec describes one expected column in a tenant database table
type ColumnSpec struct {
	Name    string
	Type    string // postgres type as it appears in ALTER TABLE
	NotNull bool
	Default string // literal SQL default, empty for none
	Unique  bool
}

// TableSpec describes one expected tenant database table
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// TenantSchema is the authoritative column inventory for tenant databases.
// The reconciler adds anything listed here that an existing database lacks;
// it never drops or rewrites columns.
func TenantSchema() []TableSpec {
	return []TableSpec{
		{
			Name: "buyers",
			Columns: []ColumnSpec{
				{Name: "id", Type: "bigserial", NotNull: true},
				{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
				{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
				{Name: "business_name", Type: "varchar(200)", NotNull: true, Default: "''"},
				{Name: "ntn_cnic", Type: "varchar(20)"},
				{Name: "province", Type: "varchar(100)"},
				{Name: "address", Type: "varchar(500)"},
				{Name: "registration_type", Type: "varchar(50)"},
			},
		},
		{
			Name: "invoices",
			Columns: []ColumnSpec{
				{Name: "id", Type: "bigserial", NotNull: true},
				{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
				{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
				{Name: "invoice_number", Type: "varchar(100)", NotNull: true, Default: "''", Unique: true},
				{Name: "system_invoice_id", Type: "varchar(20)", NotNull: true, Default: "''"},
				{Name: "status", Type: "varchar(20)", NotNull: true, Default: "'draft'"},
				{Name: "invoice_type", Type: "varchar(50)"},
				{Name: "invoice_date", Type: "varchar(20)"},
				{Name: "scenario_id", Type: "varchar(20)"},
				{Name: "seller_ntn", Type: "varchar(20)"},
				{Name: "seller_business_name", Type: "varchar(200)"},
				{Name: "seller_province", Type: "varchar(100)"},
				{Name: "seller_address", Type: "varchar(500)"},
				{Name: "buyer_ntn", Type: "varchar(20)"},
				{Name: "buyer_business_name", Type: "varchar(200)"},
				{Name: "buyer_province", Type: "varchar(100)"},
				{Name: "buyer_address", Type: "varchar(500)"},
				{Name: "buyer_registration_type", Type: "varchar(50)"},
				{Name: "fbr_invoice_number", Type: "varchar(100)"},
			},
		},
		{
			Name: "invoice_items",
			Columns: []ColumnSpec{
				{Name: "id", Type: "bigserial", NotNull: true},
				{Name: "invoice_id", Type: "bigint", NotNull: true, Default: "0"},
				{Name: "hs_code", Type: "varchar(20)"},
				{Name: "product_description", Type: "varchar(500)"},
				{Name: "rate", Type: "varchar(20)"},
				{Name: "uom", Type: "varchar(50)"},
				{Name: "quantity", Type: "decimal(18,4)"},
				{Name: "total_values", Type: "decimal(18,4)"},
				{Name: "value_sales_excluding_st", Type: "decimal(18,4)"},
				{Name: "fixed_notified_value_or_retail_price", Type: "decimal(18,4)"},
				{Name: "sales_tax_applicable", Type: "decimal(18,4)"},
				{Name: "sales_tax_withheld_at_source", Type: "decimal(18,4)"},
				{Name: "extra_tax", Type: "decimal(18,4)"},
				{Name: "further_tax", Type: "decimal(18,4)"},
				{Name: "fed_payable", Type: "decimal(18,4)"},
				{Name: "discount", Type: "decimal(18,4)"},
				{Name: "sale_type", Type: "varchar(100)"},
				{Name: "sro_schedule_no", Type: "varchar(50)"},
				{Name: "sro_item_serial_no", Type: "varchar(50)"},
			},
		},
		{
			Name: "invoice_sequences",
			Columns: []ColumnSpec{
				{Name: "name", Type: "varchar(50)", NotNull: true},
				{Name: "value", Type: "bigint", NotNull: true, Default: "0"},
			},
		},
	}
}
