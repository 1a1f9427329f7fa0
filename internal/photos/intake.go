package photos

import (
	"encoding/json"
	"fmt"
)

// Category is one logical group of uploads within a request.
type Category string

const (
	CategoryRegistration   Category = "registration"
	CategoryMileage        Category = "mileage"
	CategoryVehicleAngles  Category = "vehicle_angles"
	CategoryDamageCloseups Category = "damage_closeups"
)

// Categories returns every category in the fixed upload order used by the
// submission pipeline.
func Categories() []Category {
	return []Category{CategoryRegistration, CategoryMileage, CategoryVehicleAngles, CategoryDamageCloseups}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Limits configures what an intake accepts.
type Limits struct {
	MaxFiles     map[Category]int `json:"max_files"`
	MaxFileSize  int64            `json:"max_file_size"`
	AllowedTypes []string         `json:"allowed_types"`
}

// DefaultLimits matches the public intake form.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles: map[Category]int{
			CategoryRegistration:   2,
			CategoryMileage:        2,
			CategoryVehicleAngles:  8,
			CategoryDamageCloseups: 10,
		},
		MaxFileSize:  10 << 20, // 10 MB
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// Staged is a file accepted into the intake but not yet uploaded. The payload
// lives at StagingPath on local disk until the submission pipeline picks it up.
type Staged struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	ByteSize     int64  `json:"byte_size"`
	StagingPath  string `json:"staging_path"`
}

// RejectReason classifies why a candidate file was not staged.
type RejectReason string

const (
	RejectUnsupportedType RejectReason = "unsupported_type"
	RejectTooLarge        RejectReason = "too_large"
	RejectCategoryFull    RejectReason = "category_full"
)

// Rejection reports one refused candidate.
type Rejection struct {
	OriginalName string       `json:"original_name"`
	Reason       RejectReason `json:"reason"`
}

// Intake holds the per-category staged files of one form session, bounded by
// the configured limits.
type Intake struct {
	limits Limits
	files  map[Category][]Staged
}

func NewIntake(limits Limits) *Intake {
	return &Intake{
		limits: limits,
		files:  make(map[Category][]Staged),
	}
}

// AddFiles stages candidates into a category. Files with an unsupported type
// or an oversized payload are rejected individually; once the category is at
// capacity the remaining candidates are rejected as well, so the category
// never exceeds its configured maximum ("fill remaining slots", not
// all-or-nothing).
func (in *Intake) AddFiles(cat Category, candidates []Staged) (accepted []Staged, rejected []Rejection) {
	max := in.limits.MaxFiles[cat]
	for _, f := range candidates {
		if !in.typeAllowed(f.MimeType) {
			rejected = append(rejected, Rejection{f.OriginalName, RejectUnsupportedType})
			continue
		}
		if f.ByteSize > in.limits.MaxFileSize {
			rejected = append(rejected, Rejection{f.OriginalName, RejectTooLarge})
			continue
		}
		if len(in.files[cat]) >= max {
			rejected = append(rejected, Rejection{f.OriginalName, RejectCategoryFull})
			continue
		}
		in.files[cat] = append(in.files[cat], f)
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// RemoveFile removes one staged file by position within its category.
func (in *Intake) RemoveFile(cat Category, index int) (Staged, error) {
	list := in.files[cat]
	if index < 0 || index >= len(list) {
		return Staged{}, fmt.Errorf("no file at index %d in category %s", index, cat)
	}
	removed := list[index]
	in.files[cat] = append(list[:index], list[index+1:]...)
	return removed, nil
}

// Files returns the staged files of a category in upload order.
func (in *Intake) Files(cat Category) []Staged {
	return in.files[cat]
}

// Count returns how many files are staged in a category.
func (in *Intake) Count(cat Category) int {
	return len(in.files[cat])
}

// Remaining returns how many more files the category accepts.
func (in *Intake) Remaining(cat Category) int {
	r := in.limits.MaxFiles[cat] - len(in.files[cat])
	if r < 0 {
		return 0
	}
	return r
}

// Limits returns the intake configuration.
func (in *Intake) Limits() Limits {
	return in.limits
}

// AllStagingPaths lists every staged payload path, used for session cleanup.
func (in *Intake) AllStagingPaths() []string {
	var paths []string
	for _, cat := range Categories() {
		for _, f := range in.files[cat] {
			paths = append(paths, f.StagingPath)
		}
	}
	return paths
}

type intakeJSON struct {
	Limits Limits               `json:"limits"`
	Files  map[Category][]Staged `json:"files"`
}

// Intakes round-trip through JSON so a form session can live in Redis.

func (in *Intake) MarshalJSON() ([]byte, error) {
	return json.Marshal(intakeJSON{Limits: in.limits, Files: in.files})
}

func (in *Intake) UnmarshalJSON(data []byte) error {
	var raw intakeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.limits = raw.Limits
	in.files = raw.Files
	if in.files == nil {
		in.files = make(map[Category][]Staged)
	}
	return nil
}

func (in *Intake) typeAllowed(mime string) bool {
	for _, t := range in.limits.AllowedTypes {
		if t == mime {
			return true
		}
	}
	return false
}
