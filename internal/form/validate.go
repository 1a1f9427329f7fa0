package form

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"expertise-backend/internal/photos"
)

// Validation messages are i18n keys; handlers translate them before display.
const (
	MsgRequired        = "validation.required"
	MsgNameTooShort    = "validation.name_too_short"
	MsgInvalidEmail    = "validation.invalid_email"
	MsgInvalidPhone    = "validation.invalid_phone"
	MsgInvalidPostal   = "validation.invalid_postal_code"
	MsgMissingDate     = "validation.missing_preferred_date"
	MsgMissingType     = "validation.missing_request_type"
	MsgMissingPhotos   = "validation.missing_photos"
	MsgNotEnoughAngles = "validation.not_enough_vehicle_angles"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 .\-]{5,19}$`)
)

// FieldErrors maps a field path to a message key. Setting a field clears only
// its own entry; the whole form is never re-validated on a single field write.
type FieldErrors map[string]string

func (e FieldErrors) Clear(fieldPath string) {
	delete(e, fieldPath)
}

// MinVehicleAngles is the number of angle photos required before the vehicle
// photos step can be left.
const MinVehicleAngles = 4

// ValidateRequestTypeStep checks the request-type step: a type must be chosen
// and an appointment needs a preferred date.
func ValidateRequestTypeStep(s *Snapshot) FieldErrors {
	errs := FieldErrors{}
	if !ValidRequestType(s.RequestType) {
		errs["request_type"] = MsgMissingType
	}
	if s.RequestType == RequestTypeAppointment && strings.TrimSpace(s.PreferredDate) == "" {
		errs["preferred_date"] = MsgMissingDate
	}
	return errs
}

// ValidateDocumentPhotos requires at least one registration and one mileage
// photo.
func ValidateDocumentPhotos(s *Snapshot) FieldErrors {
	errs := FieldErrors{}
	if s.Photos.Count(photos.CategoryRegistration) < 1 {
		errs["photos.registration"] = MsgMissingPhotos
	}
	if s.Photos.Count(photos.CategoryMileage) < 1 {
		errs["photos.mileage"] = MsgMissingPhotos
	}
	return errs
}

// ValidateVehiclePhotos requires the minimum set of vehicle angle photos.
func ValidateVehiclePhotos(s *Snapshot) FieldErrors {
	errs := FieldErrors{}
	if s.Photos.Count(photos.CategoryVehicleAngles) < MinVehicleAngles {
		errs["photos.vehicle_angles"] = MsgNotEnoughAngles
	}
	return errs
}

// ValidateContact applies the field-level contact rules.
func ValidateContact(c Contact) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(c.FirstName)) < 2 {
		errs["contact.first_name"] = MsgNameTooShort
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.LastName)) < 2 {
		errs["contact.last_name"] = MsgNameTooShort
	}
	if !emailRe.MatchString(c.Email) {
		errs["contact.email"] = MsgInvalidEmail
	}
	if !phoneRe.MatchString(strings.TrimSpace(c.Phone)) {
		errs["contact.phone"] = MsgInvalidPhone
	}
	if strings.TrimSpace(c.Address) == "" {
		errs["contact.address"] = MsgRequired
	}
	if strings.TrimSpace(c.City) == "" {
		errs["contact.city"] = MsgRequired
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(c.PostalCode)); n < 4 || n > 10 {
		errs["contact.postal_code"] = MsgInvalidPostal
	}
	return errs
}

// ValidateAll is the review-step predicate: the union of every previous step.
func ValidateAll(s *Snapshot) FieldErrors {
	errs := FieldErrors{}
	merge := func(more FieldErrors) {
		for k, v := range more {
			errs[k] = v
		}
	}
	merge(ValidateRequestTypeStep(s))
	merge(ValidateDocumentPhotos(s))
	merge(ValidateVehiclePhotos(s))
	merge(ValidateContact(s.Contact))
	return errs
}
