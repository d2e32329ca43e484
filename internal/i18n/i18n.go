// Package i18n renders user-facing messages in the configured language.
//
// Message keys are the English source strings; German translations are
// registered in an in-code catalog. Errors that know how to describe
// themselves implement Localizable or UserFacing and are rendered by Describe.
package i18n

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	MsgNetworkError       = "Network error. Please try again."
	MsgUnexpected         = "An error occurred."
	MsgSessionExpired     = "Your session has expired. Please log in again."
	MsgNotAuthenticated   = "Not logged in. Run 'checklist login' first."
	MsgLoginFailed        = "Login failed. Please check your input."
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgPasswordTooShort   = "Password must be at least %d characters."
	MsgPasswordMismatch   = "Passwords do not match."
	MsgHexRequired        = "Please choose a valid color (6-digit hex value required)."
	MsgEmailRequired      = "Please enter an email address."
	MsgUsernameRequired   = "Please enter a username."
	MsgIdentifierRequired = "Please enter a username or email address."
	MsgPasswordRequired   = "Please enter a password."
	MsgTokenMissing       = "Invalid invitation link (token missing)."
	MsgNameRequired       = "Please enter a name."
	MsgStartDateRequired  = "Please enter a start date."
	MsgInvalidDate        = "Invalid date %q."
	MsgEndBeforeStart     = "The end must not be before the start."
	MsgRecurrenceRequired = "Please choose a recurrence pattern (weekly, monthly, quarterly, yearly)."
	MsgLevelOutOfRange    = "Level %d is not available; choose between 1 and %d."
	MsgDurationInvalid    = "Duration must be a positive number of hours."
	MsgChooseRole         = "Please choose an option."
	MsgChooseFirm         = "Please choose a firm."
	MsgNoFirms            = "No firms available to join."
	MsgFirmNameRequired   = "Please enter a firm name."
	MsgUploadFailed       = "Upload failed: %s"
	MsgStepFailed         = "%s completed, but %s failed: %s"
	MsgAdminRequired      = "Admin rights required."
	MsgToggleNotAllowed   = "Only employees can be activated or deactivated."
	MsgToggleSelf         = "You cannot deactivate yourself."
	MsgToggleFailed       = "Toggle failed (status %d)."
	MsgInvitationSent     = "Invitation sent to %s."
	MsgOnboardingDone     = "Onboarding complete."
	MsgNoTasks            = "No tasks yet. Create the first task with 'checklist tasks create'."
	MsgNoProjects         = "No projects yet. Create one with 'checklist projects create'."
	MsgLevelMain          = "Main task"
	MsgLevelSub           = "Subtask"
	MsgLevelN             = "Level %d"
	MsgDescription        = "Description"
	MsgDuration           = "Duration"
	MsgPeriod             = "Period"
	MsgAssignees          = "Assigned users"
	MsgAttachments        = "Attachments"
	MsgDetailsHint        = "Details: checklist tasks show %d"
	MsgVeto               = "veto"
	MsgRoleCreator        = "Owner"
	MsgRoleAdmin          = "Admin"
	MsgRoleEmployee       = "Employee"
	MsgActive             = "active"
	MsgInactive           = "inactive"
	MsgLoggedIn           = "Logged in as %s."
	MsgDashboardHint      = "Continue with 'checklist dashboard'."
	MsgLoggedOut          = "Logged out."
	MsgRegistered         = "Registered as %s."
	MsgProfileUpdated     = "Profile updated."
	MsgProjectCreated     = "Project %q created."
	MsgTaskCreated        = "Task %q created."
	MsgUserCreated        = "User %q created."
	MsgUserToggled        = "%s is now %s."
	MsgInvitationAccepted = "Invitation accepted. You can now log in."
	MsgOnboardingRequired = "Please complete the onboarding first: 'checklist onboarding'."
)

var german = map[string]string{
	MsgNetworkError:       "Netzwerkfehler. Bitte versuchen Sie es erneut.",
	MsgUnexpected:         "Ein Fehler ist aufgetreten.",
	MsgSessionExpired:     "Ihre Sitzung ist abgelaufen. Bitte melden Sie sich erneut an.",
	MsgNotAuthenticated:   "Nicht angemeldet. Bitte zuerst 'checklist login' ausführen.",
	MsgLoginFailed:        "Anmeldung fehlgeschlagen. Bitte überprüfen Sie Ihre Eingaben.",
	MsgRegisterFailed:     "Registrierung fehlgeschlagen. Bitte versuchen Sie es erneut.",
	MsgPasswordTooShort:   "Passwort muss mindestens %d Zeichen lang sein.",
	MsgPasswordMismatch:   "Passwörter stimmen nicht überein.",
	MsgHexRequired:        "Bitte eine gültige Farbe auswählen (6-stelliger Hex-Wert).",
	MsgEmailRequired:      "Bitte E-Mail eingeben.",
	MsgUsernameRequired:   "Bitte Benutzername eingeben.",
	MsgIdentifierRequired: "Bitte Benutzername oder E-Mail eingeben.",
	MsgPasswordRequired:   "Bitte Passwort eingeben.",
	MsgTokenMissing:       "Ungültiger Einladungs-Link (Token fehlt).",
	MsgNameRequired:       "Bitte einen Namen eingeben.",
	MsgStartDateRequired:  "Bitte ein Startdatum eingeben.",
	MsgInvalidDate:        "Ungültiges Datum %q.",
	MsgEndBeforeStart:     "Das Ende darf nicht vor dem Beginn liegen.",
	MsgRecurrenceRequired: "Bitte ein Wiederholungsmuster wählen (weekly, monthly, quarterly, yearly).",
	MsgLevelOutOfRange:    "Level %d ist nicht verfügbar; bitte zwischen 1 und %d wählen.",
	MsgDurationInvalid:    "Die Dauer muss eine positive Anzahl Stunden sein.",
	MsgChooseRole:         "Bitte wählen Sie eine Option.",
	MsgChooseFirm:         "Bitte wählen Sie eine Firma.",
	MsgNoFirms:            "Keine Firmen zum Beitreten verfügbar.",
	MsgFirmNameRequired:   "Bitte geben Sie einen Firmennamen ein.",
	MsgUploadFailed:       "Fehler beim Hochladen: %s",
	MsgStepFailed:         "%s erfolgreich, aber %s fehlgeschlagen: %s",
	MsgAdminRequired:      "Administratorrechte erforderlich.",
	MsgToggleNotAllowed:   "Nur Mitarbeiter können aktiviert oder deaktiviert werden.",
	MsgToggleSelf:         "Sie können sich nicht selbst deaktivieren.",
	MsgToggleFailed:       "Umschalten fehlgeschlagen (Status %d).",
	MsgInvitationSent:     "Einladung an %s wurde gesendet.",
	MsgOnboardingDone:     "Einrichtung abgeschlossen.",
	MsgNoTasks:            "Noch keine Aufgaben. Erstellen Sie die erste Aufgabe mit 'checklist tasks create'.",
	MsgNoProjects:         "Noch keine Projekte. Legen Sie eines mit 'checklist projects create' an.",
	MsgLevelMain:          "Hauptaufgabe",
	MsgLevelSub:           "Unteraufgabe",
	MsgLevelN:             "Ebene %d",
	MsgDescription:        "Beschreibung",
	MsgDuration:           "Dauer",
	MsgPeriod:             "Zeitraum",
	MsgAssignees:          "Zugewiesene Benutzer",
	MsgAttachments:        "Anhänge",
	MsgDetailsHint:        "Details: checklist tasks show %d",
	MsgVeto:               "Veto",
	MsgRoleCreator:        "Inhaber",
	MsgRoleAdmin:          "Admin",
	MsgRoleEmployee:       "Mitarbeiter",
	MsgActive:             "aktiv",
	MsgInactive:           "inaktiv",
	MsgLoggedIn:           "Angemeldet als %s.",
	MsgDashboardHint:      "Weiter mit 'checklist dashboard'.",
	MsgLoggedOut:          "Abgemeldet.",
	MsgRegistered:         "Registriert als %s.",
	MsgProfileUpdated:     "Profil aktualisiert.",
	MsgProjectCreated:     "Projekt %q angelegt.",
	MsgTaskCreated:        "Aufgabe %q angelegt.",
	MsgUserCreated:        "Benutzer %q angelegt.",
	MsgUserToggled:        "%s ist jetzt %s.",
	MsgInvitationAccepted: "Einladung angenommen. Sie können sich jetzt anmelden.",
	MsgOnboardingRequired: "Bitte schließen Sie zuerst die Einrichtung ab: 'checklist onboarding'.",
}

var defaultCatalog = mustBuildCatalog()

func mustBuildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translation := range german {
		if err := b.SetString(language.German, key, translation); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
	return b
}

// Printer returns a printer for lang ("de", "en", or any BCP 47 tag).
// Unknown or malformed tags fall back to German.
func Printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.German
	}
	matcher := language.NewMatcher([]language.Tag{language.German, language.English})
	matched, _, _ := matcher.Match(tag)
	base, _ := matched.Base()
	return message.NewPrinter(language.Make(base.String()), message.Catalog(defaultCatalog))
}

// Localizable is implemented by errors that carry a message key
type Localizable interface {
	MessageKey() (key string, args []any)
}

// Error is an error identified by a message key. Pointers to Error make
// comparable sentinels.
type Error struct {
	Key  string
	Args []any
}

// NewError creates an Error for key
func NewError(key string, args ...any) *Error {
	return &Error{Key: key, Args: args}
}

func (e *Error) Error() string {
	return fmt.Sprintf(e.Key, e.Args...)
}

// MessageKey implements Localizable
func (e *Error) MessageKey() (string, []any) {
	return e.Key, e.Args
}

// UserFacing is implemented by errors whose text comes from the backend and
// is shown verbatim. An empty UserMessage falls back to MsgUnexpected.
type UserFacing interface {
	UserMessage() string
}

// Describe renders err for display. Error arguments of a Localizable are
// described recursively.
func Describe(p *message.Printer, err error) string {
	if err == nil {
		return ""
	}

	var l Localizable
	if errors.As(err, &l) {
		key, args := l.MessageKey()
		args = append([]any(nil), args...)
		for i, arg := range args {
			if nested, ok := arg.(error); ok {
				args[i] = Describe(p, nested)
			}
		}
		return p.Sprintf(key, args...)
	}

	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
		return p.Sprintf(MsgUnexpected)
	}

	return err.Error()
}
