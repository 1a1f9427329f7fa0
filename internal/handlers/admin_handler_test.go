package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"expertise-backend/internal/models"
	"expertise-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminRouter(db *gorm.DB, store *fakeStore) *gin.Engine {
	r := gin.New()
	r.GET("/admin/requests", ListRequests(db))
	r.GET("/admin/requests/:id", GetRequest(db, store))
	r.PUT("/admin/requests/:id/status", UpdateRequestStatus(db, ws.NewManager()))
	return r
}

func putStatus(t *testing.T, r *gin.Engine, id uint, status string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(UpdateStatusRequest{Status: status})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/requests/%d/status", id), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateStatusForwardStep(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	req := seedRequest(t, db, models.RequestStatusPending)

	w := putStatus(t, r, req.ID, "processing")
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.ExpertiseRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestStatusProcessing, stored.Status)
}

func TestUpdateStatusRejectsSkippingSteps(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	req := seedRequest(t, db, models.RequestStatusPending)

	w := putStatus(t, r, req.ID, "completed")
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		AvailableActions []string `json:"available_actions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"processing", "deleted"}, resp.AvailableActions)

	var stored models.ExpertiseRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
}

func TestUpdateStatusRejectsBackward(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	req := seedRequest(t, db, models.RequestStatusCompleted)

	w := putStatus(t, r, req.ID, "processing")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatusDeleteIsAbsorbing(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())

	// Delete is reachable from any live state.
	for _, from := range []models.RequestStatus{
		models.RequestStatusPending, models.RequestStatusArchived,
	} {
		req := seedRequest(t, db, from)
		w := putStatus(t, r, req.ID, "deleted")
		assert.Equal(t, http.StatusOK, w.Code, "from %s", from)
	}

	// And terminal once reached.
	req := seedRequest(t, db, models.RequestStatusDeleted)
	w := putStatus(t, r, req.ID, "pending")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatusMissingRequestIs404(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())

	w := putStatus(t, r, 999, "processing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatusDatabaseErrorIsNotNotFound(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	req := seedRequest(t, db, models.RequestStatusPending)

	// A broken connection must surface as a server error, not as a
	// missing request.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := putStatus(t, r, req.ID, "processing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateStatusUnknownTarget(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	req := seedRequest(t, db, models.RequestStatusPending)

	w := putStatus(t, r, req.ID, "reviewing")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListRequestsHidesDeletedByDefault(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	seedRequest(t, db, models.RequestStatusPending)
	seedRequest(t, db, models.RequestStatusProcessing)
	seedRequest(t, db, models.RequestStatusDeleted)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/requests", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Requests []models.RequestSummary `json:"requests"`
		Total    int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	for _, s := range resp.Requests {
		assert.NotEqual(t, models.RequestStatusDeleted, s.Status)
	}
}

func TestListRequestsStatusFilter(t *testing.T) {
	db := testDB(t)
	r := adminRouter(db, newFakeStore())
	seedRequest(t, db, models.RequestStatusPending)
	seedRequest(t, db, models.RequestStatusProcessing)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/requests?status=processing", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Requests []models.RequestSummary `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, models.RequestStatusProcessing, resp.Requests[0].Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/requests?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRequestExpandsDamageNames(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	r := adminRouter(db, store)
	req := seedRequest(t, db, models.RequestStatusPending)

	require.NoError(t, db.Create(&models.RequestDamage{RequestID: req.ID, DamagePartID: "capot"}).Error)
	require.NoError(t, db.Create(&models.RequestDamage{RequestID: req.ID, DamagePartID: "aile_avant_gauche"}).Error)
	require.NoError(t, db.Create(&models.RequestPhoto{
		RequestID: req.ID, PhotoType: "registration",
		FilePath: "requests/2026/09/01/a.jpg", FileName: "carte.jpg",
		MimeType: "image/jpeg", FileSize: 1234,
	}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/requests/%d", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var detail models.RequestDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.ElementsMatch(t, []string{"Capot", "Aile avant gauche"}, detail.DamageZones)
	require.Len(t, detail.PhotoList, 1)
	assert.Equal(t, "/uploads/requests/2026/09/01/a.jpg", detail.PhotoList[0].PublicURL)
	assert.Equal(t, []models.RequestStatus{models.RequestStatusProcessing, models.RequestStatusDeleted}, detail.Actions)
}
