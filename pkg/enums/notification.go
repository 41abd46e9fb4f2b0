package enums

import "fmt"

// NotificationType categorizes entries in the notification feed.
type NotificationType string

const (
	NotificationTypeOrder     NotificationType = "order"
	NotificationTypeProduct   NotificationType = "product"
	NotificationTypeVendor    NotificationType = "vendor"
	NotificationTypeSystem    NotificationType = "system"
	NotificationTypePromotion NotificationType = "promotion"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypeProduct,
	NotificationTypeVendor,
	NotificationTypeSystem,
	NotificationTypePromotion,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
