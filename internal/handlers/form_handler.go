package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"expertise-backend/internal/catalog"
	"expertise-backend/internal/form"
	"expertise-backend/internal/photos"
	"expertise-backend/internal/pipeline"
	"expertise-backend/internal/services"
	"expertise-backend/internal/session"
	"expertise-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stagingDir holds uploaded payloads until the submission pipeline moves
// them to permanent storage.
const stagingDir = "uploads/staging"

type FormSessionResponse struct {
	ID         string            `json:"id"`
	Step       int               `json:"step"`
	StepName   string            `json:"step_name"`
	StepCount  int               `json:"step_count"`
	CanProceed bool              `json:"can_proceed"`
	Snapshot   *form.Snapshot    `json:"snapshot"`
	Errors     form.FieldErrors  `json:"errors"`
	Messages   map[string]string `json:"messages,omitempty"`
}

func sessionResponse(state *session.State, tr *services.Translator, locale string) FormSessionResponse {
	step := form.Step(state.Step)
	return FormSessionResponse{
		ID:         state.ID,
		Step:       state.Step,
		StepName:   step.String(),
		StepCount:  form.StepCount,
		CanProceed: form.CanProceed(step, state.Snapshot),
		Snapshot:   state.Snapshot,
		Errors:     state.Errors,
		Messages:   tr.TranslateAll(locale, state.Errors),
	}
}

func loadSession(c *gin.Context, store session.Store) (*session.State, bool) {
	state, err := store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Form session not found or expired"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form session"})
		}
		return nil, false
	}
	return state, true
}

func saveAndRespond(c *gin.Context, store session.Store, state *session.State, tr *services.Translator) {
	if err := store.Save(c.Request.Context(), state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form session"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(state, tr, c.Query("locale")))
}

// CreateFormSession opens a new session at the first step.
func CreateFormSession(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := store.Create(c.Request.Context(), photos.DefaultLimits())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create form session"})
			return
		}
		c.JSON(http.StatusCreated, sessionResponse(state, tr, c.Query("locale")))
	}
}

// GetFormSession returns the current state of a session.
func GetFormSession(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sessionResponse(state, tr, c.Query("locale")))
	}
}

type UpdateFieldsRequest struct {
	RequestType   *string       `json:"request_type"`
	Description   *string       `json:"description"`
	PreferredDate *string       `json:"preferred_date"`
	PreferredTime *string       `json:"preferred_time"`
	Contact       *contactPatch `json:"contact"`
}

type contactPatch struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
}

// UpdateFormFields applies a partial field update. Writing a field clears
// only that field's error; nothing is re-validated until navigation.
func UpdateFormFields(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		var req UpdateFieldsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		snap := state.Snapshot
		if req.RequestType != nil {
			t := form.RequestType(*req.RequestType)
			if t != form.RequestTypeUnset && !form.ValidRequestType(t) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown request type %q", *req.RequestType)})
				return
			}
			snap.RequestType = t
			state.Errors.Clear("request_type")
		}
		if req.Description != nil {
			snap.Description = *req.Description
			state.Errors.Clear("description")
		}
		if req.PreferredDate != nil {
			snap.PreferredDate = *req.PreferredDate
			state.Errors.Clear("preferred_date")
		}
		if req.PreferredTime != nil {
			snap.PreferredTime = *req.PreferredTime
			state.Errors.Clear("preferred_time")
		}
		if req.Contact != nil {
			applyContactPatch(&snap.Contact, state.Errors, req.Contact)
		}

		saveAndRespond(c, store, state, tr)
	}
}

func applyContactPatch(dst *form.Contact, errs form.FieldErrors, p *contactPatch) {
	set := func(field *string, value *string, path string) {
		if value != nil {
			*field = *value
			errs.Clear(path)
		}
	}
	set(&dst.FirstName, p.FirstName, "contact.first_name")
	set(&dst.LastName, p.LastName, "contact.last_name")
	set(&dst.Email, p.Email, "contact.email")
	set(&dst.Phone, p.Phone, "contact.phone")
	set(&dst.Address, p.Address, "contact.address")
	set(&dst.City, p.City, "contact.city")
	set(&dst.PostalCode, p.PostalCode, "contact.postal_code")
}

type ToggleDamageRequest struct {
	Zone string `json:"zone" binding:"required"`
}

// ToggleDamageZone toggles one zone of the damage selection. Outside the
// damages step the selector is read-only and the click is ignored.
func ToggleDamageZone(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		var req ToggleDamageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		mode := form.ModeReadOnly
		if form.Step(state.Step) == form.StepDamages {
			mode = form.ModeInteractive
		}
		selector := form.Selector{Selection: &state.Snapshot.Damages, Mode: mode}
		changed := selector.Click(req.Zone)

		if !changed {
			c.JSON(http.StatusOK, sessionResponse(state, tr, c.Query("locale")))
			return
		}
		saveAndRespond(c, store, state, tr)
	}
}

// GetDamageDiagram renders the session's vehicle diagram as SVG, selected
// zones highlighted.
func GetDamageDiagram(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}
		svg := catalog.DiagramSVG(state.Snapshot.Damages.Has)
		c.Data(http.StatusOK, "image/svg+xml", svg)
	}
}

// ListDamageZones returns the zone catalog in display order.
func ListDamageZones() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"zones": catalog.AllDisplayNames()})
	}
}

type PhotoUploadResponse struct {
	Accepted  []photos.Staged    `json:"accepted"`
	Rejected  []photos.Rejection `json:"rejected"`
	Count     int                `json:"count"`
	Remaining int                `json:"remaining"`
}

// UploadFormPhotos stages multipart files into one photo category. Files the
// intake refuses are reported per file, the rest fill the remaining slots.
func UploadFormPhotos(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		cat := photos.Category(c.Param("category"))
		if !photos.ValidCategory(cat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown photo category %q", c.Param("category"))})
			return
		}

		mpForm, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form data"})
			return
		}
		files := mpForm.File["files"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No files in request"})
			return
		}

		if err := os.MkdirAll(stagingDir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare staging directory"})
			return
		}

		candidates := make([]photos.Staged, 0, len(files))
		for _, f := range files {
			ext := filepath.Ext(f.Filename)
			candidates = append(candidates, photos.Staged{
				OriginalName: f.Filename,
				MimeType:     f.Header.Get("Content-Type"),
				ByteSize:     f.Size,
				StagingPath:  filepath.Join(stagingDir, uuid.New().String()+ext),
			})
		}

		accepted, rejected := state.Snapshot.Photos.AddFiles(cat, candidates)

		// Only accepted files hit the disk.
		byPath := make(map[string]int)
		for i, cand := range candidates {
			byPath[cand.StagingPath] = i
		}
		for _, a := range accepted {
			f := files[byPath[a.StagingPath]]
			if err := c.SaveUploadedFile(f, a.StagingPath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
				return
			}
		}

		if err := store.Save(c.Request.Context(), state); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form session"})
			return
		}

		c.JSON(http.StatusOK, PhotoUploadResponse{
			Accepted:  accepted,
			Rejected:  rejected,
			Count:     state.Snapshot.Photos.Count(cat),
			Remaining: state.Snapshot.Photos.Remaining(cat),
		})
	}
}

// RemoveFormPhoto drops one staged photo by category and index.
func RemoveFormPhoto(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		cat := photos.Category(c.Param("category"))
		if !photos.ValidCategory(cat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown photo category %q", c.Param("category"))})
			return
		}

		var index int
		if _, err := fmt.Sscanf(c.Param("index"), "%d", &index); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo index"})
			return
		}

		removed, err := state.Snapshot.Photos.RemoveFile(cat, index)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No photo at this index"})
			return
		}
		os.Remove(removed.StagingPath)

		saveAndRespond(c, store, state, tr)
	}
}

// NextFormStep advances one step when the current step validates. When
// blocked, the step is unchanged and the blocking errors are recorded.
func NextFormStep(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		machine := state.Machine()
		if !machine.Next(state.Snapshot) {
			for field, msg := range form.StepErrors(machine.Current(), state.Snapshot) {
				state.Errors[field] = msg
			}
		} else {
			state.Step = int(machine.Current())
		}

		saveAndRespond(c, store, state, tr)
	}
}

// PrevFormStep moves back one step. Going back is never blocked.
func PrevFormStep(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		machine := state.Machine()
		machine.Prev()
		state.Step = int(machine.Current())

		saveAndRespond(c, store, state, tr)
	}
}

type GoToStepRequest struct {
	Step int `json:"step"`
}

// GoToFormStep jumps to a step by index, used by the review summary links.
func GoToFormStep(store session.Store, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		var req GoToStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		machine := state.Machine()
		if err := machine.GoTo(req.Step); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		state.Step = int(machine.Current())

		saveAndRespond(c, store, state, tr)
	}
}

// SubmitForm runs the submission pipeline on the session snapshot. On
// success the session is deleted and the new request announced on the live
// feed; on failure the session survives so the applicant can retry.
func SubmitForm(store session.Store, pl *pipeline.Pipeline, feed *ws.Manager, tr *services.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := loadSession(c, store)
		if !ok {
			return
		}

		req, err := pl.Submit(c.Request.Context(), state.Snapshot)
		if err != nil {
			var verr *pipeline.ValidationError
			if errors.As(err, &verr) {
				for field, msg := range verr.Fields {
					state.Errors[field] = msg
				}
				if saveErr := store.Save(c.Request.Context(), state); saveErr != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form session"})
					return
				}
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":    "Validation failed",
					"fields":   verr.Fields,
					"messages": tr.TranslateAll(c.Query("locale"), verr.Fields),
				})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Submission failed, please try again"})
			return
		}

		feed.SendRequestCreated(req.ID, req.RequestType)
		if err := store.Delete(c.Request.Context(), state.ID); err != nil {
			// The session has served its purpose; expiry will collect it.
			log.Printf("failed to delete form session %s: %v", state.ID, err)
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"request_id": req.ID,
			"status":     req.Status,
		})
	}
}
