package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/clientdesk/clientdesk/internal/client"
	"github.com/clientdesk/clientdesk/internal/config"
	"github.com/clientdesk/clientdesk/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Import.MaxFileSize = 20 << 20
	cfg.Import.Timeout = time.Minute

	m := store.NewMemory()
	srv := NewServer(cfg, func(context.Context) (store.Store, error) {
		return m, nil
	})
	return srv, m
}

func seed(t *testing.T, m *store.Memory, code, lastName string) {
	t.Helper()
	c := &client.Client{
		CardCode:    code,
		LastName:    lastName,
		PhoneMobile: "+79161234567",
		Birthday:    time.Date(1990, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, m.Insert(context.Background(), c))
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListClientsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/clients", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListClientsOrdered(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "2", "Zimmer")
	seed(t, m, "1", "Adams")

	rec := doJSON(t, srv, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []client.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Adams", got[0].LastName)
	assert.Equal(t, "Zimmer", got[1].LastName)
}

func TestGetClient(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "123456", "Smith")

	rec := doJSON(t, srv, http.MethodGet, "/api/clients/123456", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got client.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Smith", got.LastName)

	rec = doJSON(t, srv, http.MethodGet, "/api/clients/999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestUpdateClientNormalizesPhone(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "123456", "Smith")

	body := map[string]interface{}{
		"lastName":    "Smith",
		"phoneMobile": "9167654321",
		"city":        "Kazan",
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/clients/123456", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := m.FindByCode(context.Background(), "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "+79167654321", got.PhoneMobile)
	assert.Equal(t, "Kazan", got.City)
	assert.Equal(t, 1, m.Commits)
}

func TestUpdateClientRejectsKeyChange(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "123456", "Smith")

	body := map[string]interface{}{
		"cardCode":    "654321",
		"lastName":    "Smith",
		"phoneMobile": "+79161234567",
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/clients/123456", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, m.Commits, "store untouched on rejection")
}

func TestUpdateClientInvalidPhone(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "123456", "Smith")

	body := map[string]interface{}{
		"lastName":    "Smith",
		"phoneMobile": "12345",
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/clients/123456", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
	assert.Equal(t, 0, m.Commits)
}

func TestUpdateClientMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]interface{}{
		"lastName":    "Ghost",
		"phoneMobile": "+79161234567",
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/clients/404404", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameCardCode(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "111111", "Smith")

	rec := doJSON(t, srv, http.MethodPost, "/api/clients/111111/card-code",
		map[string]string{"card_code": "222222"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ctx := context.Background()
	gone, err := m.FindByCode(ctx, "111111")
	require.NoError(t, err)
	assert.Nil(t, gone, "old key released")

	got, err := m.FindByCode(ctx, "222222")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "222222", got.CardCode)
	assert.Equal(t, "Smith", got.LastName)
	assert.Equal(t, 1, m.Commits)
}

func TestRenameCardCodeConflict(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "111111", "Smith")
	seed(t, m, "222222", "Jones")

	rec := doJSON(t, srv, http.MethodPost, "/api/clients/111111/card-code",
		map[string]string{"card_code": "222222"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Code     string        `json:"code"`
		Existing client.Client `json:"existing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "duplicate_key", body.Code)
	assert.Equal(t, "Jones", body.Existing.LastName, "conflicting record returned")

	// Both records untouched
	smith, err := m.FindByCode(context.Background(), "111111")
	require.NoError(t, err)
	require.NotNil(t, smith)
	assert.Equal(t, 0, m.Commits)
}

func TestRenameCardCodeValidation(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "111111", "Smith")

	for _, bad := range []string{"", "12a34", "  "} {
		rec := doJSON(t, srv, http.MethodPost, "/api/clients/111111/card-code",
			map[string]string{"card_code": bad})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "card_code=%q", bad)
	}
	assert.Equal(t, 0, m.Commits)
}

func TestRenameCardCodeSameCodeIsNoop(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "111111", "Smith")

	rec := doJSON(t, srv, http.MethodPost, "/api/clients/111111/card-code",
		map[string]string{"card_code": "111111"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, m.Commits)
}

func TestRenameCardCodeMissing(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/clients/404404/card-code",
		map[string]string{"card_code": "222222"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClient(t *testing.T) {
	srv, m := newTestServer(t)
	seed(t, m, "123456", "Smith")

	rec := doJSON(t, srv, http.MethodDelete, "/api/clients/123456", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, m.Len())

	rec = doJSON(t, srv, http.MethodDelete, "/api/clients/123456", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{
		"CardCode", "LastName", "FirstName", "Patronymic", "PhoneMobile", "Email",
		"GenderId", "Birthday", "City", "Pincode", "Bonus", "Turnover",
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func postImport(t *testing.T, srv *Server, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestImportWorkbook(t *testing.T) {
	srv, m := newTestServer(t)

	content := buildWorkbook(t, [][]interface{}{
		{"123456", "Smith", "John", "", "9161234567", "", "", "01.02.1990", "Moscow", "101000", "50", ""},
		{"", "NoCode", "X", "", "9160000000", "", "", "01.02.1990", "", "", "", ""},
	})

	rec := postImport(t, srv, "clients.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		FileName string `json:"fileName"`
		Inserted int    `json:"inserted"`
		Skipped  []struct {
			Line int `json:"line"`
		} `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "clients.xlsx", result.FileName)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 3, result.Skipped[0].Line)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.Commits)
}

func TestImportRejectsWrongExtension(t *testing.T) {
	srv, m := newTestServer(t)

	rec := postImport(t, srv, "clients.csv", []byte("a,b,c"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, m.Len())
}

func TestImportRejectsMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("unrelated", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
