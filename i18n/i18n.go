// Package i18n holds the fr/en message catalogues and language negotiation.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// DefaultLang is used when nothing better can be negotiated.
const DefaultLang = "fr"

var (
	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[string]map[string]string{
	"fr": {
		"required":               "Requis",
		"invalid_credentials":    "Email ou mot de passe invalide",
		"user_firstname_invalid": "Veuillez remplir votre prénom. Le prénom ne doit pas dépasser 100 caractères",
		"user_lastname_invalid":  "Veuillez remplir votre nom. Le nom ne doit pas dépasser 100 caractères",
		"user_password_mismatch": "Les mots de passe doivent etre renseignés et identiques",
		"user_email_invalid":     "Veuillez saisir une adresse email valide",
		"user_email_taken":       "L'email renseigné est déjà associé à un autre étudiant",
		"role_admin":             "Admin",
		"role_student":           "Etudiant",
		"users_title":            "Étudiants",
		"user_add_title":         "Ajouter un étudiant",
		"user_edit_title":        "Modifier le profil",
		"invoices_title":         "Mes factures",
		"invoices_empty":         "Aucune facture",
		"invoices_paid_total":    "Total réglé",
		"invoices_status":        "Statut",
		"invoices_status_paid":   "Réglée",
		"invoices_status_due":    "À régler",
		"login":                  "Connexion",
		"logout":                 "Déconnexion",
		"save":                   "Enregistrer",
		"delete":                 "Supprimer",
	},
	"en": {
		"required":               "Required",
		"invalid_credentials":    "Invalid email or password",
		"user_firstname_invalid": "Please fill in your first name. It must not exceed 100 characters",
		"user_lastname_invalid":  "Please fill in your last name. It must not exceed 100 characters",
		"user_password_mismatch": "Passwords must be filled in and identical",
		"user_email_invalid":     "Please enter a valid email address",
		"user_email_taken":       "This email is already used by another student",
		"role_admin":             "Admin",
		"role_student":           "Student",
		"users_title":            "Students",
		"user_add_title":         "Add a student",
		"user_edit_title":        "Edit profile",
		"invoices_title":         "My invoices",
		"invoices_empty":         "No invoices",
		"invoices_paid_total":    "Total paid",
		"invoices_status":        "Status",
		"invoices_status_paid":   "Paid",
		"invoices_status_due":    "Due",
		"login":                  "Log in",
		"logout":                 "Log out",
		"save":                   "Save",
		"delete":                 "Delete",
	},
}

// T translates code into lang. Unknown languages fall back to DefaultLang and
// unknown codes are returned unchanged.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if msg, ok := msgs[code]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// DetectLanguage picks fr or en from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	base, _ := supported[idx].Base()
	return base.String()
}

type langKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the request language or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
