package models

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"    // awaiting review
	RequestStatusProcessing RequestStatus = "processing" // expertise in progress
	RequestStatusCompleted  RequestStatus = "completed"  // report delivered
	RequestStatusArchived   RequestStatus = "archived"   // closed
	RequestStatusDeleted    RequestStatus = "deleted"    // removed from the back office
)

// ValidStatus reports whether s is part of the fixed lifecycle enum.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusPending, RequestStatusProcessing, RequestStatusCompleted,
		RequestStatusArchived, RequestStatusDeleted:
		return true
	}
	return false
}

// nextForward maps each status to its only forward successor.
var nextForward = map[RequestStatus]RequestStatus{
	RequestStatusPending:    RequestStatusProcessing,
	RequestStatusProcessing: RequestStatusCompleted,
	RequestStatusCompleted:  RequestStatusArchived,
}

// CanTransition enforces the lifecycle: one forward step at a time, plus the
// absorbing delete reachable from any non-deleted state.
func CanTransition(from, to RequestStatus) bool {
	if !ValidStatus(to) {
		return false
	}
	if from == RequestStatusDeleted {
		return false
	}
	if to == RequestStatusDeleted {
		return true
	}
	return nextForward[from] == to
}

// NextActions lists the transitions the back office may offer from a status;
// one forward action at most, plus delete.
func NextActions(from RequestStatus) []RequestStatus {
	var actions []RequestStatus
	if next, ok := nextForward[from]; ok {
		actions = append(actions, next)
	}
	if from != RequestStatusDeleted {
		actions = append(actions, RequestStatusDeleted)
	}
	return actions
}

// ExpertiseRequest is one persisted damage-expertise submission.
type ExpertiseRequest struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	RequestType   string          `json:"request_type" gorm:"type:varchar(20);not null"`
	Status        RequestStatus   `json:"status" gorm:"type:varchar(20);default:'pending'"`
	FirstName     string          `json:"first_name" gorm:"not null"`
	LastName      string          `json:"last_name" gorm:"not null"`
	Email         string          `json:"email" gorm:"not null"`
	Phone         string          `json:"phone" gorm:"not null"`
	Address       string          `json:"address" gorm:"default:''"`
	City          string          `json:"city" gorm:"default:''"`
	PostalCode    string          `json:"postal_code" gorm:"default:''"`
	Description   string          `json:"description" gorm:"default:''"`
	PreferredDate string          `json:"preferred_date" gorm:"default:''"`
	PreferredTime string          `json:"preferred_time" gorm:"default:''"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Damages       []RequestDamage `json:"-" gorm:"foreignKey:RequestID"`
	Photos        []RequestPhoto  `json:"-" gorm:"foreignKey:RequestID"`
}

// RequestDamage joins a request to one damaged zone, identified by its
// storage key.
type RequestDamage struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	RequestID    uint   `json:"request_id" gorm:"not null;index"`
	DamagePartID string `json:"damage_part_id" gorm:"type:varchar(64);not null"`
}

// RequestPhoto is one uploaded attachment of a request.
type RequestPhoto struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RequestID uint      `json:"request_id" gorm:"not null;index"`
	PhotoType string    `json:"photo_type" gorm:"type:varchar(32);not null"`
	FilePath  string    `json:"file_path" gorm:"not null"`
	FileName  string    `json:"file_name" gorm:"not null"`
	MimeType  string    `json:"mime_type" gorm:"not null"`
	FileSize  int64     `json:"file_size" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestSummary is the list-view row returned by the admin browser.
type RequestSummary struct {
	ID          uint          `json:"id"`
	RequestType string        `json:"request_type"`
	Status      RequestStatus `json:"status"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	City        string        `json:"city"`
	PhotoCount  int           `json:"photo_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

// RequestDetail expands a request with its photos and damages; damage zones
// are expressed as display names for the report view.
type RequestDetail struct {
	ExpertiseRequest
	DamageZones []string        `json:"damage_zones"`
	PhotoList   []PhotoResponse `json:"photos"`
	Actions     []RequestStatus `json:"available_actions"`
}

// PhotoResponse is the API shape of one attachment.
type PhotoResponse struct {
	ID        uint   `json:"id"`
	PhotoType string `json:"photo_type"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	FileSize  int64  `json:"file_size"`
	PublicURL string `json:"public_url"`
}
