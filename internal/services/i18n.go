package services

import (
	"strings"
)

// Translator resolves message keys to localized strings. It is total: a
// missing key or locale falls back to the key itself, so rendering never
// fails on an untranslated message.
type Translator struct {
	defaultLocale string
	tables        map[string]map[string]string
}

func NewTranslator() *Translator {
	return &Translator{
		defaultLocale: "fr",
		tables: map[string]map[string]string{
			"fr": {
				"validation.required":                 "Ce champ est obligatoire",
				"validation.name_too_short":           "Au moins 2 caractères requis",
				"validation.invalid_email":            "Adresse e-mail invalide",
				"validation.invalid_phone":            "Numéro de téléphone invalide",
				"validation.invalid_postal_code":      "Code postal invalide (4 à 10 caractères)",
				"validation.missing_preferred_date":   "Veuillez choisir une date de rendez-vous",
				"validation.missing_request_type":     "Veuillez choisir un type de demande",
				"validation.missing_photos":           "Au moins une photo est requise",
				"validation.not_enough_vehicle_angles": "Au moins 4 photos du véhicule sont requises",
				"mail.request_created.subject":        "Nouvelle demande d'expertise {{request_id}}",
				"mail.request_created.body":           "Une nouvelle demande ({{request_type}}) a été déposée par {{last_name}}.",
			},
			"en": {
				"validation.required":                 "This field is required",
				"validation.name_too_short":           "At least 2 characters required",
				"validation.invalid_email":            "Invalid email address",
				"validation.invalid_phone":            "Invalid phone number",
				"validation.invalid_postal_code":      "Invalid postal code (4 to 10 characters)",
				"validation.missing_preferred_date":   "Please pick an appointment date",
				"validation.missing_request_type":     "Please choose a request type",
				"validation.missing_photos":           "At least one photo is required",
				"validation.not_enough_vehicle_angles": "At least 4 vehicle photos are required",
				"mail.request_created.subject":        "New expertise request {{request_id}}",
				"mail.request_created.body":           "A new request ({{request_type}}) was submitted by {{last_name}}.",
			},
		},
	}
}

// Translate resolves key in the given locale, substituting {{param}}
// placeholders. Unknown locales use the default locale; unknown keys return
// the key unchanged.
func (t *Translator) Translate(locale, key string, params map[string]string) string {
	table, ok := t.tables[locale]
	if !ok {
		table = t.tables[t.defaultLocale]
	}
	msg, ok := table[key]
	if !ok {
		msg = key
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{{"+name+"}}", value)
	}
	return msg
}

// TranslateAll maps every value of a field-error map through Translate.
func (t *Translator) TranslateAll(locale string, errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for field, key := range errs {
		out[field] = t.Translate(locale, key, nil)
	}
	return out
}
