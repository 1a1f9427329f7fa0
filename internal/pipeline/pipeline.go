package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"expertise-backend/internal/catalog"
	"expertise-backend/internal/form"
	"expertise-backend/internal/models"
	"expertise-backend/internal/photos"
	"expertise-backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier dispatches the post-submission notification. Failures are logged
// and never surface to the applicant.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]interface{}) error
}

// Pipeline turns a validated form snapshot into persisted rows and uploaded
// objects. All collaborators are injected; sleep and readFile exist so tests
// run without real delays or staged files on disk.
type Pipeline struct {
	db       *gorm.DB
	store    storage.Storage
	notifier Notifier
	policy   RetryPolicy

	sleep    func(time.Duration)
	readFile func(path string) ([]byte, error)
	now      func() time.Time
}

func New(db *gorm.DB, store storage.Storage, notifier Notifier) *Pipeline {
	return &Pipeline{
		db:       db,
		store:    store,
		notifier: notifier,
		policy:   DefaultRetryPolicy(),
		sleep:    time.Sleep,
		readFile: os.ReadFile,
		now:      time.Now,
	}
}

// WithPolicy overrides the retry policy.
func (p *Pipeline) WithPolicy(policy RetryPolicy) *Pipeline {
	p.policy = policy
	return p
}

// WithClock overrides sleep and now for tests.
func (p *Pipeline) WithClock(sleep func(time.Duration), now func() time.Time) *Pipeline {
	if sleep != nil {
		p.sleep = sleep
	}
	if now != nil {
		p.now = now
	}
	return p
}

// WithFileReader overrides how staged payloads are read.
func (p *Pipeline) WithFileReader(read func(string) ([]byte, error)) *Pipeline {
	p.readFile = read
	return p
}

// uploaded tracks one stored object during a run so a failed batch can be
// rolled back.
type uploaded struct {
	photo models.RequestPhoto
	path  string
}

// Submit runs the submission for a snapshot. Transient failures are retried
// as a whole unit per the policy; on final failure the error is returned and
// the caller keeps the form session for resubmission.
func (p *Pipeline) Submit(ctx context.Context, snap *form.Snapshot) (*models.ExpertiseRequest, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		req, err := p.run(ctx, snap)
		if err == nil {
			SubmissionsTotal.WithLabelValues("success").Inc()
			p.dispatchNotification(req, snap)
			p.cleanupStaging(snap)
			return req, nil
		}

		lastErr = err
		if !p.policy.ShouldRetry(attempt, err) {
			break
		}
		SubmissionRetries.Inc()
		log.Printf("submission attempt %d failed, retrying: %v", attempt, err)
		p.sleep(p.policy.Delay(attempt))
	}
	SubmissionsTotal.WithLabelValues("failure").Inc()
	log.Printf("submission failed permanently: %v", lastErr)
	return nil, lastErr
}

// run executes steps 1-6 once. On any failure every object uploaded during
// this run is removed best-effort so a retry starts clean.
func (p *Pipeline) run(ctx context.Context, snap *form.Snapshot) (*models.ExpertiseRequest, error) {
	// Step 1: full validation, no side effects on reject.
	if errs := form.ValidateAll(snap); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	// Step 2: upload all categories, sequential per file in fixed order.
	batch, err := p.uploadPhotos(ctx, snap)
	if err != nil {
		UploadFailures.Inc()
		p.rollback(ctx, batch)
		return nil, err
	}

	// Step 3: damage diagram snapshot. Non-fatal: logged and skipped.
	if diagram, ok := p.uploadDiagram(ctx, snap); ok {
		batch = append(batch, diagram)
	}

	// Steps 4-6: request row, damage joins, photo rows in one transaction.
	req, err := p.persist(snap, batch)
	if err != nil {
		p.rollback(ctx, batch)
		return nil, classifyPersist(err)
	}
	return req, nil
}

func (p *Pipeline) uploadPhotos(ctx context.Context, snap *form.Snapshot) ([]uploaded, error) {
	var batch []uploaded
	prefix := p.now().Format("2006/01/02")

	for _, cat := range photos.Categories() {
		for _, staged := range snap.Photos.Files(cat) {
			data, err := p.readFile(staged.StagingPath)
			if err != nil {
				return batch, Transient(fmt.Errorf("read staged file %s: %w", staged.OriginalName, err))
			}
			optimized, err := photos.Optimize(data)
			if err != nil {
				// Undecodable payloads are permanent failures.
				return batch, fmt.Errorf("optimize %s: %w", staged.OriginalName, err)
			}
			path := fmt.Sprintf("requests/%s/%s.jpg", prefix, uuid.New().String())
			if err := p.store.Upload(ctx, path, optimized, "image/jpeg"); err != nil {
				return batch, Transient(fmt.Errorf("upload %s: %w", staged.OriginalName, err))
			}
			batch = append(batch, uploaded{
				photo: models.RequestPhoto{
					PhotoType: string(cat),
					FilePath:  path,
					FileName:  staged.OriginalName,
					MimeType:  "image/jpeg",
					FileSize:  int64(len(optimized)),
				},
				path: path,
			})
		}
	}
	return batch, nil
}

func (p *Pipeline) uploadDiagram(ctx context.Context, snap *form.Snapshot) (uploaded, bool) {
	if snap.Damages.Count() == 0 {
		return uploaded{}, false
	}
	svg := catalog.DiagramSVG(snap.Damages.Has)
	path := fmt.Sprintf("requests/%s/%s.svg", p.now().Format("2006/01/02"), uuid.New().String())
	if err := p.store.Upload(ctx, path, svg, "image/svg+xml"); err != nil {
		log.Printf("damage diagram upload skipped: %v", err)
		return uploaded{}, false
	}
	return uploaded{
		photo: models.RequestPhoto{
			PhotoType: "damage_diagram",
			FilePath:  path,
			FileName:  "damage-diagram.svg",
			MimeType:  "image/svg+xml",
			FileSize:  int64(len(svg)),
		},
		path: path,
	}, true
}

func (p *Pipeline) persist(snap *form.Snapshot, batch []uploaded) (*models.ExpertiseRequest, error) {
	req := &models.ExpertiseRequest{
		RequestType:   string(snap.RequestType),
		Status:        models.RequestStatusPending,
		FirstName:     snap.Contact.FirstName,
		LastName:      snap.Contact.LastName,
		Email:         snap.Contact.Email,
		Phone:         snap.Contact.Phone,
		Address:       snap.Contact.Address,
		City:          snap.Contact.City,
		PostalCode:    snap.Contact.PostalCode,
		Description:   snap.Description,
		PreferredDate: snap.PreferredDate,
		PreferredTime: snap.PreferredTime,
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		for _, name := range snap.Damages.List() {
			key := catalog.ToStorageKey(name)
			if key == "" {
				// Unresolvable zones are skipped, never fatal.
				log.Printf("request %d: skipping unresolvable damage zone %q", req.ID, name)
				continue
			}
			damage := models.RequestDamage{RequestID: req.ID, DamagePartID: key}
			if err := tx.Create(&damage).Error; err != nil {
				return fmt.Errorf("create damage row %s: %w", key, err)
			}
		}

		for i := range batch {
			batch[i].photo.RequestID = req.ID
			if err := tx.Create(&batch[i].photo).Error; err != nil {
				return fmt.Errorf("create photo row %s: %w", batch[i].photo.FileName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (p *Pipeline) rollback(ctx context.Context, batch []uploaded) {
	if len(batch) == 0 {
		return
	}
	paths := make([]string, len(batch))
	for i, u := range batch {
		paths[i] = u.path
	}
	if err := p.store.Remove(ctx, paths); err != nil {
		log.Printf("rollback of %d uploaded object(s) incomplete: %v", len(paths), err)
	}
}

// dispatchNotification fires the best-effort notification. A failure is
// logged and never turns a successful submission into an error.
func (p *Pipeline) dispatchNotification(req *models.ExpertiseRequest, snap *form.Snapshot) {
	if p.notifier == nil {
		return
	}
	payload := map[string]interface{}{
		"request_id":   req.ID,
		"request_type": req.RequestType,
		"email":        req.Email,
		"last_name":    req.LastName,
		"damage_count": snap.Damages.Count(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.notifier.Notify(ctx, "request_created", payload); err != nil {
			log.Printf("notification for request %d failed: %v", req.ID, err)
		}
	}()
}

// cleanupStaging removes the staged payloads of a submitted session.
func (p *Pipeline) cleanupStaging(snap *form.Snapshot) {
	for _, path := range snap.Photos.AllStagingPaths() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("staging cleanup %s: %v", path, err)
		}
	}
}
