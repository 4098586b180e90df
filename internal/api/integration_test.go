package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/import-backend/internal/domain/model"
)

const uploadCSV = `Date,Transaction type,Amount,Name,Project/WO #,Account full name,Account name,Invoice #
2025-01-10,Expense,"$1,500.00",ABC Construction LLC,24-101,Job Expenses:Materials,Materials,
2025-01-10,Expense,"$1,500.00",ABC Construction,24-101,Job Expenses:Materials,Materials,
2025-01-12,Invoice,3500.00,Miller Property Group,24-101,,,INV-42
2025-01-13,Expense,not-a-number,Broken Row,,,,
`

func uploadRequest(t *testing.T, path, csv string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "bank-jan.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestIntegration_UploadImportsFile(t *testing.T) {
	server, repo := newTestServer(t)
	repo.Payees = []model.Payee{{ID: "p1", DisplayName: "ABC Construction LLC"}}
	repo.Clients = []model.Client{{ID: "c1", DisplayName: "Miller Property Group"}}
	repo.Projects = []model.Project{{ID: "prj1", Number: "24-101", Name: "Oak Street Remodel"}}

	req := uploadRequest(t, "/api/imports", uploadCSV)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.Equal(t, 1, result.ImportedExpenses, "second expense row is an in-file duplicate")
	assert.Equal(t, 1, result.ImportedRevenues)
	assert.Len(t, result.InFileDuplicateExpenses, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "amount", result.Errors[0].Field)

	assert.True(t, repo.InsertExpensesCalled)
	assert.True(t, repo.InsertRevenuesCalled)
	assert.Len(t, repo.Expenses, 1)
	assert.Len(t, repo.Revenues, 1)
	assert.Equal(t, "prj1", repo.Expenses[0].ProjectID)

	// The run is recorded and retrievable.
	require.Len(t, repo.Runs, 1)
	for id := range repo.Runs {
		getRec := doRequest(server, http.MethodGet, "/api/imports/"+id, nil)
		assert.Equal(t, http.StatusOK, getRec.Code)
	}
}

func TestIntegration_DryRunUploadWritesNothing(t *testing.T) {
	server, repo := newTestServer(t)
	repo.Payees = []model.Payee{{ID: "p1", DisplayName: "ABC Construction LLC"}}

	req := uploadRequest(t, "/api/imports?dry_run=true", uploadCSV)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 1, result.ImportedExpenses)

	assert.False(t, repo.InsertExpensesCalled)
	assert.Empty(t, repo.Expenses)
}

func TestIntegration_UploadRejectsMissingFile(t *testing.T) {
	server, _ := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntegration_UploadRejectsHeaderlessFile(t *testing.T) {
	server, _ := newTestServer(t)

	req := uploadRequest(t, "/api/imports", "no,recognizable,columns\n1,2,3\n")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
