package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"expertise-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	statsCacheKey = "admin_stats"
	statsCacheTTL = 5 * time.Minute
)

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type RequestStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
	ByMonth  []MonthCount     `json:"by_month"`
}

type groupCount struct {
	Key   string
	Count int64
}

func computeStats(db *gorm.DB) (*RequestStats, error) {
	stats := &RequestStats{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	base := db.Model(&models.ExpertiseRequest{}).Where("status <> ?", models.RequestStatusDeleted)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var byStatus []groupCount
	if err := base.Session(&gorm.Session{}).
		Select("status as key, count(*) as count").Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.ByStatus[g.Key] = g.Count
	}

	var byType []groupCount
	if err := base.Session(&gorm.Session{}).
		Select("request_type as key, count(*) as count").Group("request_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, g := range byType {
		stats.ByType[g.Key] = g.Count
	}

	// Month buckets are built in Go so the query stays portable across
	// database engines.
	var createdAts []time.Time
	if err := base.Session(&gorm.Session{}).Pluck("created_at", &createdAts).Error; err != nil {
		return nil, err
	}
	months := make(map[string]int64)
	for _, t := range createdAts {
		months[t.Format("2006-01")]++
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stats.ByMonth = append(stats.ByMonth, MonthCount{Month: k, Count: months[k]})
	}

	return stats, nil
}

// GetStats returns aggregate counts for the back-office dashboard. Results
// are cached in redis for a few minutes when a client is available.
func GetStats(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if rdb != nil {
			if cached, err := rdb.Get(ctx, statsCacheKey).Bytes(); err == nil {
				var stats RequestStats
				if err := json.Unmarshal(cached, &stats); err == nil {
					c.JSON(http.StatusOK, stats)
					return
				}
			}
		}

		stats, err := computeStats(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
			return
		}

		if rdb != nil {
			if data, err := json.Marshal(stats); err == nil {
				if err := rdb.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
					log.Printf("stats: failed to cache: %v", err)
				}
			}
		}

		c.JSON(http.StatusOK, *stats)
	}
}

// ExportStatsExcel serves the dashboard numbers as an xlsx workbook.
func ExportStatsExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := computeStats(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Statistics"
		f.SetSheetName("Sheet1", sheet)

		row := 1
		setRow := func(a, b interface{}) {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), a)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b)
			row++
		}

		setRow("Total requests", stats.Total)
		row++

		setRow("By status", "")
		for _, status := range []models.RequestStatus{
			models.RequestStatusPending, models.RequestStatusProcessing,
			models.RequestStatusCompleted, models.RequestStatusArchived,
		} {
			setRow(string(status), stats.ByStatus[string(status)])
		}
		row++

		setRow("By type", "")
		for _, t := range []string{"quote", "appointment"} {
			setRow(t, stats.ByType[t])
		}
		row++

		setRow("By month", "")
		for _, m := range stats.ByMonth {
			setRow(m.Month, m.Count)
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="expertise_stats.xlsx"`)
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			log.Printf("stats: failed to write workbook: %v", err)
		}
	}
}
