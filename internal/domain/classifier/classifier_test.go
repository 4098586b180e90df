package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buildledger/import-backend/internal/domain/model"
)

func TestClassifier_UserOverrideWinsOverStaticTable(t *testing.T) {
	// "payroll expenses" is Labor in the static table; the user override
	// must still win.
	rules := []model.CategoryRule{
		{AccountPath: "Payroll Expenses", Category: model.CategoryManagement},
	}
	c := New(DefaultTables(), rules)

	cat, tier := c.Classify("Payroll Expenses", "weekly payroll")

	assert.Equal(t, model.CategoryManagement, cat)
	assert.Equal(t, TierOverride, tier)
}

func TestClassifier_StaticTableMatch(t *testing.T) {
	c := New(DefaultTables(), nil)

	cat, tier := c.Classify("Job Expenses:Materials", "")

	assert.Equal(t, model.CategoryMaterials, cat)
	assert.Equal(t, TierStatic, tier)
}

func TestClassifier_AccountPathIsCaseInsensitive(t *testing.T) {
	c := New(DefaultTables(), []model.CategoryRule{
		{AccountPath: "custom:path", Category: model.CategoryPermits},
	})

	cat, tier := c.Classify("CUSTOM:PATH", "")

	assert.Equal(t, model.CategoryPermits, cat)
	assert.Equal(t, TierOverride, tier)
}

func TestClassifier_AccountKeywordFallback(t *testing.T) {
	c := New(DefaultTables(), nil)

	// Not an exact static entry, but contains "subcontract".
	cat, tier := c.Classify("Expenses:Subcontracted Work", "")

	assert.Equal(t, model.CategorySubcontractor, cat)
	assert.Equal(t, TierAccountKeyword, tier)
}

func TestClassifier_DescriptionKeywords(t *testing.T) {
	c := New(DefaultTables(), nil)

	cases := []struct {
		description string
		want        model.Category
	}{
		{"weekly payroll run", model.CategoryLabor},
		{"paid subcontractor for framing", model.CategorySubcontractor},
		{"lumber delivery", model.CategoryMaterials},
		{"excavator rental", model.CategoryEquipment},
		{"building permit application", model.CategoryPermits},
		{"office cleaning", model.CategoryManagement},
	}

	for _, tc := range cases {
		cat, tier := c.Classify("", tc.description)
		assert.Equal(t, tc.want, cat, "description %q", tc.description)
		assert.Equal(t, TierDescriptionKeyword, tier)
	}
}

func TestClassifier_DefaultsToOther(t *testing.T) {
	c := New(DefaultTables(), nil)

	cat, tier := c.Classify("Misc:Unknown Account", "quarterly widget")

	assert.Equal(t, model.CategoryOther, cat)
	assert.Equal(t, TierDefault, tier)
}

func TestClassifier_TracksTierStatsAndUnmapped(t *testing.T) {
	c := New(DefaultTables(), []model.CategoryRule{
		{AccountPath: "my:path", Category: model.CategoryLabor},
	})

	c.Classify("my:path", "")                      // override
	c.Classify("Job Expenses:Materials", "")       // static
	c.Classify("Job Expenses:Materials", "")       // static again
	c.Classify("Mystery Account", "widget")        // default
	c.Classify("Another Mystery", "more widgets")  // default
	c.Classify("", "paid subcontractor invoice")   // description keyword

	stats := c.TierStats()
	assert.Equal(t, 1, stats["override"])
	assert.Equal(t, 2, stats["static"])
	assert.Equal(t, 1, stats["description_keyword"])
	assert.Equal(t, 2, stats["default"])

	assert.Equal(t, []string{"Another Mystery", "Mystery Account"}, c.UnmappedAccounts())

	used := c.MappingUsed()
	assert.Equal(t, model.CategoryLabor, used["my:path"])
	assert.Equal(t, model.CategoryMaterials, used["Job Expenses:Materials"])
	assert.NotContains(t, used, "Mystery Account")
}

func TestClassifier_EmptyInputs(t *testing.T) {
	c := New(DefaultTables(), nil)

	cat, tier := c.Classify("", "")

	assert.Equal(t, model.CategoryOther, cat)
	assert.Equal(t, TierDefault, tier)
	assert.Empty(t, c.UnmappedAccounts())
}
