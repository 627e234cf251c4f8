package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
)

const testSecret = "test-secret"

func setupServer(t *testing.T, rate string) http.Handler {
	t.Helper()
	tl := models.StringPtr("tl")
	ds := &models.Dataset{
		Users: []models.User{
			{ID: "admin", Name: "Ada Admin", Role: models.RoleAdmin},
			{ID: "tl", Name: "Tara Leader", Role: models.RoleTeamLeader},
			{ID: "rep-a", Name: "Rep A", Role: models.RoleSalesRep, TeamLeaderID: tl},
			{ID: "rep-b", Name: "Rep B", Role: models.RoleSalesRep, TeamLeaderID: tl},
		},
		Leads: []models.Lead{
			{ID: "l1", OwnerID: models.StringPtr("rep-a"), Name: "Acme", Status: models.StatusClosedDeal, Source: "website", CreatedAt: "2024-03-02"},
			{ID: "l2", OwnerID: models.StringPtr("rep-b"), Name: "Globex", Status: models.StatusFreshLead, Source: "referral", CreatedAt: "2024-03-03"},
		},
		Contracts: []models.Contract{
			{ID: "c1", CreatedByID: "rep-a", ClientName: "Acme", DealValue: 1000, ContractDate: "2024-03-04", Status: models.ContractSigned},
		},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := report.NewService(report.StaticSource{Dataset: ds}, report.Options{Calculator: analytics.Calculator{Location: time.UTC}}, analytics.WeekStartsMonday, logger)
	svc.Clock = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	srv, err := NewServer(svc, testSecret, rate, logger)
	require.NoError(t, err)
	return srv.Routes()
}

func get(t *testing.T, h http.Handler, path, viewer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if viewer != "" {
		token, _, err := GenerateToken([]byte(testSecret), viewer, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestNewServerRequiresSecret(t *testing.T) {
	_, err := NewServer(nil, "", "60-M", nil)
	assert.Error(t, err)

	_, err = NewServer(nil, "s", "sixty", nil)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	token, exp, err := GenerateToken([]byte("k"), "tl", time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ParseToken([]byte("k"), token)
	require.NoError(t, err)
	assert.Equal(t, "tl", claims.UserID)

	_, err = ParseToken([]byte("other"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := GenerateToken([]byte("k"), "tl", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte("k"), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAPIRequiresToken(t *testing.T) {
	h := setupServer(t, "60-M")

	rec := get(t, h, "/api/v1/reports/team", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/team", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportJSON(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/api/v1/reports/team?timeframe=month", "tl")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		ReportType string `json:"reportType"`
		Context    string `json:"contextName"`
		Members    []any  `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "team", body.ReportType)
	assert.Equal(t, "Tara Leader", body.Context)
	assert.Len(t, body.Members, 3)
}

func TestReportAccessDenied(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/api/v1/reports/sales", "rep-a")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decodeError(t, rec))
}

func TestReportBadRequests(t *testing.T) {
	h := setupServer(t, "60-M")

	rec := get(t, h, "/api/v1/reports/weekly", "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/api/v1/reports/team?timeframe=fortnight", "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/api/v1/reports/team?timeframe=custom&start=2024-03-10&end=2024-03-01", "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/api/v1/reports/user?subject=ghost", "admin")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/api/v1/reports/team", "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportDownload(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/api/v1/reports/user/export?subject=rep-a&timeframe=custom&start=2024-03-01&end=2024-03-31", "tl")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="User_Report_Rep_A_2024-03-01_to_2024-03-31.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Len(t, rec.Header().Get("X-Export-ID"), 26)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Leads")
}

func TestExportDenied(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/api/v1/reports/team/export", "rep-b")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decodeError(t, rec))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestScope(t *testing.T) {
	h := setupServer(t, "60-M")
	rec := get(t, h, "/api/v1/scope", "tl")
	require.Equal(t, http.StatusOK, rec.Code)

	var body scopeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tl", body.Viewer)
	assert.Len(t, body.Users, 3)

	rec = get(t, h, "/api/v1/scope", "rep-a")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupServer(t, "60-M")
	get(t, h, "/api/v1/reports/team", "tl")
	get(t, h, "/api/v1/reports/sales", "rep-a")

	rec := get(t, h, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `salesreport_reports_generated_total{type="team"} 1`)
	assert.Contains(t, body, "salesreport_access_denied_total 1")
}

func TestRateLimit(t *testing.T) {
	h := setupServer(t, "2-M")
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, get(t, h, "/api/v1/scope", "admin").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, get(t, h, "/health", "").Code)
}
