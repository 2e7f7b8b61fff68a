// Package i18n provides the small bilingual message catalog used by the
// waitlist workflows. Spanish is the primary locale of the landing page;
// English is served to everyone else.
package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
)

type contextKey string

const localeKeyForContext contextKey = "locale"

// Message keys understood by T.
const (
	MsgEmailRequired     = "email_required"
	MsgEmailTooLong      = "email_too_long"
	MsgEmailInvalid      = "email_invalid"
	MsgEmailDisposable   = "email_disposable"
	MsgAlreadyRegistered = "already_registered"
	MsgJoinSuccess       = "join_success"
	MsgInternalError     = "internal_error"
	MsgBroadcastSummary  = "broadcast_summary"
	MsgBroadcastFailed   = "broadcast_failed"
	MsgStatsFailed       = "stats_failed"
)

var supported = []language.Tag{
	language.Spanish, // default
	language.English,
}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.Spanish: {
		MsgEmailRequired:     "El email es requerido",
		MsgEmailTooLong:      "El email es demasiado largo",
		MsgEmailInvalid:      "Por favor ingresa un email válido",
		MsgEmailDisposable:   "Por favor usa un email permanente",
		MsgAlreadyRegistered: "Este email ya está registrado en la lista de espera",
		MsgJoinSuccess:       "¡Perfecto! Te hemos agregado a la lista de espera. Recibirás un email de confirmación pronto.",
		MsgInternalError:     "Hubo un error interno. Por favor intenta de nuevo en unos momentos.",
		MsgBroadcastSummary:  "Notificaciones enviadas: %d exitosas, %d fallidas",
		MsgBroadcastFailed:   "Error al enviar notificaciones",
		MsgStatsFailed:       "Error al obtener estadísticas",
	},
	language.English: {
		MsgEmailRequired:     "Email is required",
		MsgEmailTooLong:      "Email is too long",
		MsgEmailInvalid:      "Please enter a valid email",
		MsgEmailDisposable:   "Please use a permanent email address",
		MsgAlreadyRegistered: "This email is already on the waitlist",
		MsgJoinSuccess:       "You're in! We've added you to the waitlist. A confirmation email is on its way.",
		MsgInternalError:     "Something went wrong on our side. Please try again in a moment.",
		MsgBroadcastSummary:  "Notifications sent: %d succeeded, %d failed",
		MsgBroadcastFailed:   "Failed to send notifications",
		MsgStatsFailed:       "Failed to load waitlist stats",
	},
}

// Match resolves an Accept-Language header (or a bare "es"/"en" query value)
// to the closest supported locale. Empty or unparsable input falls back to
// Spanish.
func Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return language.Spanish
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Spanish
	}

	_, index, _ := matcher.Match(tags...)
	return supported[index]
}

// T returns the catalog message for key in the given locale.
func T(tag language.Tag, key string) string {
	messages, ok := catalog[tag]
	if !ok {
		messages = catalog[language.Spanish]
	}

	if msg, ok := messages[key]; ok {
		return msg
	}

	// Unknown keys fall back to the generic error copy rather than leaking
	// the key to the caller.
	return messages[MsgInternalError]
}

// Tf is T with fmt verbs.
func Tf(tag language.Tag, key string, args ...any) string {
	return fmt.Sprintf(T(tag, key), args...)
}

// WithLocale stores the resolved locale on the context so services can
// localize messages without threading the tag through every signature.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKeyForContext, tag)
}

// FromContext returns the locale set by WithLocale, defaulting to Spanish.
func FromContext(ctx context.Context) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(localeKeyForContext).(language.Tag); ok {
			return tag
		}
	}

	return language.Spanish
}
