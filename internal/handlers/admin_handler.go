package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"expertise-backend/internal/catalog"
	"expertise-backend/internal/models"
	"expertise-backend/internal/storage"
	"expertise-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errInvalidTransition = errors.New("status transition not allowed")

// ListRequests returns the admin list view, newest first. Deleted requests
// are hidden unless explicitly asked for with ?status=deleted.
func ListRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.ExpertiseRequest{}).Preload("Photos")

		if status := c.Query("status"); status != "" {
			if !models.ValidStatus(models.RequestStatus(status)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
				return
			}
			query = query.Where("status = ?", status)
		} else {
			query = query.Where("status <> ?", models.RequestStatusDeleted)
		}

		if reqType := c.Query("type"); reqType != "" {
			query = query.Where("request_type = ?", reqType)
		}

		limit := 50
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 200 {
			limit = l
		}
		offset := 0
		if o, err := strconv.Atoi(c.Query("offset")); err == nil && o > 0 {
			offset = o
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count requests"})
			return
		}

		var requests []models.ExpertiseRequest
		if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load requests"})
			return
		}

		summaries := make([]models.RequestSummary, 0, len(requests))
		for _, r := range requests {
			summaries = append(summaries, models.RequestSummary{
				ID:          r.ID,
				RequestType: r.RequestType,
				Status:      r.Status,
				FirstName:   r.FirstName,
				LastName:    r.LastName,
				City:        r.City,
				PhotoCount:  len(r.Photos),
				CreatedAt:   r.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"requests": summaries,
			"total":    total,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// GetRequest returns the full detail view of one request, damage zones
// expanded to their display names.
func GetRequest(db *gorm.DB, store storage.Storage) gin.HandlerFunc {
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

		zones := make([]string, 0, len(request.Damages))
		for _, d := range request.Damages {
			zones = append(zones, catalog.ToDisplayName(d.DamagePartID))
		}

		photoList := make([]models.PhotoResponse, 0, len(request.Photos))
		for _, p := range request.Photos {
			photoList = append(photoList, models.PhotoResponse{
				ID:        p.ID,
				PhotoType: p.PhotoType,
				FileName:  p.FileName,
				MimeType:  p.MimeType,
				FileSize:  p.FileSize,
				PublicURL: store.PublicURL(p.FilePath),
			})
		}

		c.JSON(http.StatusOK, models.RequestDetail{
			ExpertiseRequest: request,
			DamageZones:      zones,
			PhotoList:        photoList,
			Actions:          models.NextActions(request.Status),
		})
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateRequestStatus moves a request along its lifecycle. Only the single
// forward step or delete are accepted; anything else is rejected without a
// write.
func UpdateRequestStatus(db *gorm.DB, feed *ws.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}
		target := models.RequestStatus(req.Status)

		var request models.ExpertiseRequest
		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&request, id).Error; err != nil {
				return err
			}
			if !models.CanTransition(request.Status, target) {
				return errInvalidTransition
			}
			return tx.Model(&request).Update("status", target).Error
		})

		if errors.Is(txErr, errInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Transition not allowed",
				"current_status":    request.Status,
				"available_actions": models.NextActions(request.Status),
			})
			return
		}
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		if txErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request status"})
			return
		}

		feed.SendStatusChanged(request.ID, string(target))
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"status":            target,
			"available_actions": models.NextActions(target),
		})
	}
}
