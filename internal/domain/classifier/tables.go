package classifier

import "github.com/buildledger/import-backend/internal/domain/model"

// KeywordRule maps a lowercase substring to a category. Rules are scanned in
// order; the first hit wins.
type KeywordRule struct {
	Keyword  string
	Category model.Category
}

// Tables holds the immutable lookup data the classifier consults. Build once
// at startup (DefaultTables) and inject; nothing mutates it after
// construction.
type Tables struct {
	// StaticAccounts maps lowercased account paths to categories. These are
	// the well-known chart-of-accounts entries.
	StaticAccounts map[string]model.Category

	// AccountKeywords is scanned against the account path when no exact
	// entry matched. Broader than StaticAccounts.
	AccountKeywords []KeywordRule

	// DescriptionKeywords is scanned against the row description as the
	// last resort before the default category.
	DescriptionKeywords []KeywordRule
}

// DefaultTables returns the built-in classification data for a construction
// chart of accounts.
func DefaultTables() Tables {
	return Tables{
		StaticAccounts: map[string]model.Category{
			"job expenses:labor":                   model.CategoryLabor,
			"job expenses:subcontractors":          model.CategorySubcontractor,
			"job expenses:materials":               model.CategoryMaterials,
			"job expenses:equipment rental":        model.CategoryEquipment,
			"job expenses:permits":                 model.CategoryPermits,
			"cost of goods sold:labor":             model.CategoryLabor,
			"cost of goods sold:subcontractors":    model.CategorySubcontractor,
			"cost of goods sold:materials":         model.CategoryMaterials,
			"payroll expenses":                     model.CategoryLabor,
			"payroll expenses:wages":               model.CategoryLabor,
			"payroll expenses:taxes":               model.CategoryLabor,
			"equipment rental":                     model.CategoryEquipment,
			"tools and small equipment":            model.CategoryEquipment,
			"permits and licenses":                 model.CategoryPermits,
			"office supplies":                      model.CategoryManagement,
			"professional fees":                    model.CategoryManagement,
			"insurance:general liability":          model.CategoryManagement,
			"insurance:workers compensation":       model.CategoryLabor,
			"job expenses:job materials:purchases": model.CategoryMaterials,
		},
		AccountKeywords: []KeywordRule{
			{"payroll", model.CategoryLabor},
			{"labor", model.CategoryLabor},
			{"wage", model.CategoryLabor},
			{"subcontract", model.CategorySubcontractor},
			{"material", model.CategoryMaterials},
			{"supplies", model.CategoryMaterials},
			{"supply", model.CategoryMaterials},
			{"lumber", model.CategoryMaterials},
			{"equipment", model.CategoryEquipment},
			{"rental", model.CategoryEquipment},
			{"tool", model.CategoryEquipment},
			{"permit", model.CategoryPermits},
			{"license", model.CategoryPermits},
			{"office", model.CategoryManagement},
			{"admin", model.CategoryManagement},
			{"insurance", model.CategoryManagement},
		},
		DescriptionKeywords: []KeywordRule{
			{"labor", model.CategoryLabor},
			{"wage", model.CategoryLabor},
			{"payroll", model.CategoryLabor},
			{"contractor", model.CategorySubcontractor},
			{"subcontractor", model.CategorySubcontractor},
			{"material", model.CategoryMaterials},
			{"supply", model.CategoryMaterials},
			{"lumber", model.CategoryMaterials},
			{"concrete", model.CategoryMaterials},
			{"equipment", model.CategoryEquipment},
			{"rental", model.CategoryEquipment},
			{"tool", model.CategoryEquipment},
			{"machinery", model.CategoryEquipment},
			{"permit", model.CategoryPermits},
			{"fee", model.CategoryPermits},
			{"license", model.CategoryPermits},
			{"management", model.CategoryManagement},
			{"admin", model.CategoryManagement},
			{"office", model.CategoryManagement},
		},
	}
}
