package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"expertise-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func exportRouter(db *gorm.DB, store *fakeStore) *gin.Engine {
	r := gin.New()
	r.GET("/admin/requests/:id/export", ExportRequestZip(db, store))
	return r
}

func addPhoto(t *testing.T, db *gorm.DB, requestID uint, photoType, path string) {
	t.Helper()
	require.NoError(t, db.Create(&models.RequestPhoto{
		RequestID: requestID,
		PhotoType: photoType,
		FilePath:  path,
		FileName:  path,
		MimeType:  "image/jpeg",
		FileSize:  3,
	}).Error)
}

func readZip(t *testing.T, body *bytes.Buffer) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(body.Bytes()), int64(body.Len()))
	require.NoError(t, err)
	entries := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = data
	}
	return entries
}

func TestExportZipDeterministicNames(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	r := exportRouter(db, store)
	req := seedRequest(t, db, models.RequestStatusProcessing)

	store.objects["reg.jpg"] = []byte("reg")
	store.objects["angle1.jpg"] = []byte("a1")
	store.objects["angle2.jpg"] = []byte("a2")
	addPhoto(t, db, req.ID, "registration", "reg.jpg")
	addPhoto(t, db, req.ID, "vehicle_angles", "angle1.jpg")
	addPhoto(t, db, req.ID, "vehicle_angles", "angle2.jpg")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/requests/%d/export", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	entries := readZip(t, w.Body)
	assert.Contains(t, entries, "request.json")
	assert.Equal(t, []byte("reg"), entries["registration_1.jpg"])
	assert.Equal(t, []byte("a1"), entries["vehicle_angles_1.jpg"])
	assert.Equal(t, []byte("a2"), entries["vehicle_angles_2.jpg"])
	assert.Len(t, entries, 4)
}

func TestExportZipSkipsUnreadableAttachments(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	r := exportRouter(db, store)
	req := seedRequest(t, db, models.RequestStatusProcessing)

	store.objects["ok.jpg"] = []byte("ok")
	addPhoto(t, db, req.ID, "vehicle_angles", "gone.jpg")
	addPhoto(t, db, req.ID, "vehicle_angles", "ok.jpg")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/requests/%d/export", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	entries := readZip(t, w.Body)
	assert.Contains(t, entries, "request.json")
	assert.Equal(t, []byte("ok"), entries["vehicle_angles_1.jpg"])
	assert.Len(t, entries, 2)
}

func TestExportZipMetadataHasDamageNames(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	r := exportRouter(db, store)
	req := seedRequest(t, db, models.RequestStatusPending)
	require.NoError(t, db.Create(&models.RequestDamage{RequestID: req.ID, DamagePartID: "capot"}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/requests/%d/export", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	entries := readZip(t, w.Body)
	var meta struct {
		DamageZones []string `json:"damage_zones"`
		Email       string   `json:"email"`
	}
	require.NoError(t, json.Unmarshal(entries["request.json"], &meta))
	assert.Equal(t, []string{"Capot"}, meta.DamageZones)
	assert.Equal(t, "jean.dupont@example.ch", meta.Email)
}

func TestExportZipUnknownRequest(t *testing.T) {
	db := testDB(t)
	r := exportRouter(db, newFakeStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/requests/999/export", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
