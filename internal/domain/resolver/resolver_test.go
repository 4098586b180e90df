package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/import-backend/internal/domain/model"
)

func makePayees() []model.Payee {
	return []model.Payee{
		{ID: "p1", DisplayName: "ABC Construction", LegalName: "ABC Construction Services LLC", Type: model.PayeeSubcontractor},
		{ID: "p2", DisplayName: "Home Depot", Type: model.PayeeMaterialSupplier},
		{ID: "p3", DisplayName: "United Rentals", Type: model.PayeeEquipmentRental},
	}
}

func TestResolvePayee_ExactMatchIsAlwaysConfidence100(t *testing.T) {
	r := New(DefaultConfig(), makePayees(), nil, nil, nil)

	m := r.ResolvePayee("home depot")

	require.NotNil(t, m.Accepted)
	assert.Equal(t, "p2", m.Accepted.EntityID)
	assert.Equal(t, 100.0, m.Accepted.Confidence)
	assert.Equal(t, model.MatchExact, m.Accepted.Type)
}

func TestResolvePayee_ExactMatchOnSecondaryName(t *testing.T) {
	r := New(DefaultConfig(), makePayees(), nil, nil, nil)

	m := r.ResolvePayee("ABC Construction Services LLC")

	require.NotNil(t, m.Accepted)
	assert.Equal(t, "p1", m.Accepted.EntityID)
	assert.Equal(t, 100.0, m.Accepted.Confidence)
	assert.Equal(t, model.MatchExact, m.Accepted.Type)
}

func TestResolvePayee_FuzzyAutoAccept(t *testing.T) {
	r := New(DefaultConfig(), makePayees(), nil, nil, nil)

	// Suffix noise normalizes away, so this should clear the auto-accept bar.
	m := r.ResolvePayee("ABC Construction LLC")

	require.NotNil(t, m.Accepted)
	assert.Equal(t, "p1", m.Accepted.EntityID)
	assert.GreaterOrEqual(t, m.Accepted.Confidence, 75.0)
	assert.Equal(t, model.MatchFuzzy, m.Accepted.Type)
}

func TestResolvePayee_NoCandidateAboveReviewThreshold(t *testing.T) {
	r := New(DefaultConfig(), makePayees(), nil, nil, nil)

	m := r.ResolvePayee("Zzz Totally Unrelated Vendor Qrst")

	assert.Nil(t, m.Accepted)
	assert.Empty(t, m.Candidates)
}

func TestResolvePayee_ReviewBandSuggestsWithoutAccepting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoAcceptThreshold = 99.5
	r := New(cfg, makePayees(), nil, nil, nil)

	m := r.ResolvePayee("ABC Constr")

	assert.Nil(t, m.Accepted)
	require.NotEmpty(t, m.Candidates)
	assert.Equal(t, "p1", m.Candidates[0].EntityID)
	assert.GreaterOrEqual(t, m.Candidates[0].Confidence, 40.0)
}

func TestResolvePayee_CandidatesSortedDescending(t *testing.T) {
	payees := []model.Payee{
		{ID: "p1", DisplayName: "Smith Concrete"},
		{ID: "p2", DisplayName: "Smith Concrete and Paving"},
	}
	r := New(DefaultConfig(), payees, nil, nil, nil)

	m := r.ResolvePayee("Smith Concrete")

	require.NotNil(t, m.Accepted)
	for i := 1; i < len(m.Candidates); i++ {
		assert.GreaterOrEqual(t, m.Candidates[i-1].Confidence, m.Candidates[i].Confidence)
	}
}

func TestResolvePayee_EmptyInput(t *testing.T) {
	r := New(DefaultConfig(), makePayees(), nil, nil, nil)

	m := r.ResolvePayee("  ")

	assert.Nil(t, m.Accepted)
	assert.Empty(t, m.Candidates)
}

func TestResolveClient_UsesCompanyName(t *testing.T) {
	clients := []model.Client{
		{ID: "c1", DisplayName: "Jane Miller", CompanyName: "Miller Property Group"},
	}
	r := New(DefaultConfig(), nil, clients, nil, nil)

	m := r.ResolveClient("Miller Property Group Inc")

	require.NotNil(t, m.Accepted)
	assert.Equal(t, "c1", m.Accepted.EntityID)
}

func TestAddPayee_MidRunEntityIsMatchable(t *testing.T) {
	r := New(DefaultConfig(), nil, nil, nil, nil)

	before := r.ResolvePayee("Acme Grading")
	assert.Nil(t, before.Accepted)

	r.AddPayee(model.Payee{ID: "new1", DisplayName: "Acme Grading"})

	after := r.ResolvePayee("Acme Grading")
	require.NotNil(t, after.Accepted)
	assert.Equal(t, "new1", after.Accepted.EntityID)
	assert.Equal(t, model.MatchExact, after.Accepted.Type)
}

func TestInferPayeeType(t *testing.T) {
	cases := []struct {
		accountPath string
		want        model.PayeeType
	}{
		{"Job Expenses:Subcontractors", model.PayeeSubcontractor},
		{"Contract Labor", model.PayeeSubcontractor},
		{"Job Expenses:Materials", model.PayeeMaterialSupplier},
		{"Office Supplies", model.PayeeMaterialSupplier},
		{"Equipment Rental", model.PayeeEquipmentRental},
		{"Permits and Licenses", model.PayeePermitAuthority},
		{"Bank Charges", model.PayeeOther},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, InferPayeeType(tc.accountPath), "account path %q", tc.accountPath)
	}
}
