package handlers

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"expertise-backend/internal/catalog"
	"expertise-backend/internal/models"
	"expertise-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var extByMime = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

func exportExt(p models.RequestPhoto) string {
	if ext := filepath.Ext(p.FileName); ext != "" {
		return ext
	}
	if ext, ok := extByMime[p.MimeType]; ok {
		return ext
	}
	return ".bin"
}

// ExportRequestZip streams a request's attachments as a ZIP archive. Entry
// names are deterministic (photo type plus a per-type counter) so two
// exports of the same request produce the same listing. Attachments whose
// payload cannot be read are skipped, not fatal.
func ExportRequestZip(db *gorm.DB, store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
			return
		}

		var request models.ExpertiseRequest
		if err := db.Preload("Damages").Preload("Photos").First(&request, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}

		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="request_%d.zip"`, request.ID))
		c.Status(http.StatusOK)

		zw := zip.NewWriter(c.Writer)
		defer zw.Close()

		if err := writeRequestMetadata(zw, &request); err != nil {
			log.Printf("export: failed to write metadata for request %d: %v", request.ID, err)
			return
		}

		counters := make(map[string]int)
		for _, p := range request.Photos {
			data, err := store.Read(c.Request.Context(), p.FilePath)
			if err != nil {
				log.Printf("export: skipping photo %d of request %d: %v", p.ID, request.ID, err)
				continue
			}

			counters[p.PhotoType]++
			name := fmt.Sprintf("%s_%d%s", p.PhotoType, counters[p.PhotoType], exportExt(p))
			w, err := zw.Create(name)
			if err != nil {
				log.Printf("export: failed to create entry %s: %v", name, err)
				return
			}
			if _, err := w.Write(data); err != nil {
				log.Printf("export: failed to write entry %s: %v", name, err)
				return
			}
		}
	}
}

func writeRequestMetadata(zw *zip.Writer, request *models.ExpertiseRequest) error {
	zones := make([]string, 0, len(request.Damages))
	for _, d := range request.Damages {
		zones = append(zones, catalog.ToDisplayName(d.DamagePartID))
	}

	meta := map[string]interface{}{
		"id":             request.ID,
		"request_type":   request.RequestType,
		"status":         request.Status,
		"first_name":     request.FirstName,
		"last_name":      request.LastName,
		"email":          request.Email,
		"phone":          request.Phone,
		"address":        request.Address,
		"city":           request.City,
		"postal_code":    request.PostalCode,
		"description":    request.Description,
		"preferred_date": request.PreferredDate,
		"preferred_time": request.PreferredTime,
		"damage_zones":   zones,
		"created_at":     request.CreatedAt,
	}

	w, err := zw.Create("request.json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
