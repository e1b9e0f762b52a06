package enums

type NotificationType string

const (
	NotificationMatch   NotificationType = "match"
	NotificationMessage NotificationType = "message"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMatch, NotificationMessage:
		return true
	default:
		return false
	}
}
