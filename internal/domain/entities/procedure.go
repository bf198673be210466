package entities

// Procedure is a named, fixed-duration dental treatment type. The name is a
// translation key; rendering it in the user's language is the caller's
// concern. Procedures are read-only from the scheduling core's perspective.
type Procedure struct {
	ID              string `json:"procedure_id" db:"procedure_id"`
	Name            string `json:"procedure_name" db:"procedure_name"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`
}
