package toast

// Type represents the toast notification type.
// Any string is accepted; only TypeSuccess changes the icon.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Icon names, without the "fa-" prefix.
const (
	IconSuccess = "check-circle"
	IconDefault = "exclamation-triangle"
)

// Icon returns the icon for the type: check-circle for success and
// exclamation-triangle for every other value, known or not.
func (t Type) Icon() string {
	switch t {
	case TypeSuccess:
		return IconSuccess
	default:
		return IconDefault
	}
}

// Modifier returns the severity class, "alert-<type>".
func (t Type) Modifier() string {
	return "alert-" + string(t)
}

// Known reports whether t is one of the predefined types.
func (t Type) Known() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	}
	return false
}

// IconHTML returns the icon element markup for the type.
func (t Type) IconHTML() string {
	return `<i class="fas fa-` + t.Icon() + `"></i>`
}

// Content returns the inner HTML of a toast: the icon, a space, and the
// message as given.
func Content(message string, t Type) string {
	return t.IconHTML() + " " + message
}

// Message is a toast to show: its text and type.
type Message struct {
	Text string
	Type Type
}
