// Package model holds the domain types shared across the import engine:
// canonical registry entities, validated upload rows, and the structures
// that make up an import result.
package model

// Category is a construction cost category.
type Category string

const (
	CategoryLabor         Category = "Labor"
	CategorySubcontractor Category = "Subcontractor"
	CategoryMaterials     Category = "Materials"
	CategoryEquipment     Category = "Equipment"
	CategoryPermits       Category = "Permits"
	CategoryManagement    Category = "Management"
	CategoryOther         Category = "Other"
)

// PayeeType classifies what kind of vendor a payee is.
type PayeeType string

const (
	PayeeSubcontractor    PayeeType = "subcontractor"
	PayeeMaterialSupplier PayeeType = "material_supplier"
	PayeeEquipmentRental  PayeeType = "equipment_rental"
	PayeePermitAuthority  PayeeType = "permit_authority"
	PayeeOther            PayeeType = "other"
)

// Payee is a canonical vendor. LegalName is the optional registered/legal
// name when it differs from the display name.
type Payee struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	LegalName   string    `json:"legal_name,omitempty"`
	Type        PayeeType `json:"type"`
}

// Client is a canonical customer. CompanyName is the optional company name
// when the display name is a person.
type Client struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name,omitempty"`
}

// Project is a canonical job. Number is the job number tokens on bank rows
// usually carry (e.g. "24-103").
type Project struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	ClientID string `json:"client_id,omitempty"`
}

// AliasMode controls how a project alias is compared against row input.
type AliasMode string

const (
	AliasExact      AliasMode = "exact"
	AliasStartsWith AliasMode = "starts_with"
	AliasContains   AliasMode = "contains"
)

// ProjectAlias maps a recurring row token to a project. Inactive aliases are
// ignored during resolution.
type ProjectAlias struct {
	ProjectID string    `json:"project_id"`
	Alias     string    `json:"alias"`
	Mode      AliasMode `json:"mode"`
	Active    bool      `json:"active"`
}

// CategoryRule is a user-defined account-path override. Rules always win over
// the built-in classification tables.
type CategoryRule struct {
	AccountPath string   `json:"account_path"`
	Category    Category `json:"category"`
}
