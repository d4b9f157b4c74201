package enums

import "fmt"

// NotificationChannel is the delivery mechanism for a store order alert.
type NotificationChannel string

const (
	NotificationChannelLog   NotificationChannel = "log"
	NotificationChannelEmail NotificationChannel = "email"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelLog,
	NotificationChannelEmail,
}

// String implements fmt.Stringer.
func (n NotificationChannel) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationChannel.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw input into a NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}
