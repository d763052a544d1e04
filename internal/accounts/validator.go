// Package accounts validates submitted user account forms.
//
// Validation is a pure accumulator: every rule runs, each violated rule adds its
// message, and an empty result means the record may be persisted. The caller
// supplies the email owners snapshot so that no I/O happens here.
package accounts

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/diewo77/go-trainings/i18n"
	"github.com/diewo77/go-trainings/validation"
)

// MaxNameLength bounds firstname and lastname, in characters.
const MaxNameLength = 100

// Message codes, translated through i18n.
const (
	CodeFirstnameInvalid = "user_firstname_invalid"
	CodeLastnameInvalid  = "user_lastname_invalid"
	CodePasswordMismatch = "user_password_mismatch"
	CodeEmailInvalid     = "user_email_invalid"
	CodeEmailTaken       = "user_email_taken"
)

// UserRecord is a submitted account form. ID is 0 when the account does not exist yet.
// Fields are expected to be trimmed already.
type UserRecord struct {
	ID        uint
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Password2 string
}

// EmailOwner is one live account holding an email address.
type EmailOwner struct {
	ID    uint
	Email string
}

// FromForm builds a trimmed UserRecord from submitted form values.
func FromForm(id uint, form url.Values) UserRecord {
	return UserRecord{
		ID:        id,
		Firstname: strings.TrimSpace(form.Get("firstname")),
		Lastname:  strings.TrimSpace(form.Get("lastname")),
		Email:     strings.TrimSpace(form.Get("email")),
		Password:  strings.TrimSpace(form.Get("password")),
		Password2: strings.TrimSpace(form.Get("password2")),
	}
}

// ParseID parses a positive account id; ok is false otherwise.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Validator renders messages in one language.
type Validator struct {
	lang string
}

// NewValidator returns a validator producing messages in lang.
func NewValidator(lang string) Validator {
	return Validator{lang: lang}
}

// Validate checks rec with messages in the default language.
func Validate(rec UserRecord, existing []EmailOwner) validation.Messages {
	return NewValidator(i18n.DefaultLang).Validate(rec, existing)
}

// Validate returns every violated rule's message, in rule order.
// One "email taken" message is emitted per conflicting account.
func (v Validator) Validate(rec UserRecord, existing []EmailOwner) validation.Messages {
	msgs := validation.Messages{}

	if !validation.LengthBetween(rec.Firstname, 1, MaxNameLength) {
		msgs.Add(v.t(CodeFirstnameInvalid))
	}
	if !validation.LengthBetween(rec.Lastname, 1, MaxNameLength) {
		msgs.Add(v.t(CodeLastnameInvalid))
	}
	if rec.Password == "" || rec.Password2 == "" || rec.Password != rec.Password2 {
		msgs.Add(v.t(CodePasswordMismatch))
	}
	if !validation.Email(rec.Email) {
		msgs.Add(v.t(CodeEmailInvalid))
	}
	for _, owner := range existing {
		if owner.Email == rec.Email && owner.ID != rec.ID {
			msgs.Add(v.t(CodeEmailTaken))
		}
	}
	return msgs
}

func (v Validator) t(code string) string {
	return i18n.T(v.lang, code)
}
