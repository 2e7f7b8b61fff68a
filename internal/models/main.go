package models

// ModelRegistry lists every model subject to auto-migration in development
// environments. Production schemas are managed through SQL migrations.
var ModelRegistry = []interface{}{
	&WaitlistUser{},
}
