// Package notification resolves which delivery channels a company user
// has subscribed to for a given event.
package notification

import (
	"strings"

	"github.com/garyjia/billing-ops/internal/domain/entity"
)

// Keys shared by every notification category
const (
	KeyAllNotifications     = "all_notifications"
	KeyAllUserNotifications = "all_user_notifications"
)

// Owned is implemented by documents that have a creator or assignee
type Owned interface {
	OwnedBy(userID int64) bool
}

// RequiredKeys returns the subscription keys that trigger a notification for
// event, e.g. "quote_expired" yields all_notifications, quote_expired and quote_expired_all
func RequiredKeys(event string) []string {
	return []string{KeyAllNotifications, event, event + "_all"}
}

// FindUserNotificationTypes returns the channels on which cu wants to hear
// about a document. When cu owns the document the personal keys
// (all_user_notifications and each "<event>_user" variant) also match.
// A disabled company notifies nobody.
func FindUserNotificationTypes(company *entity.Company, doc Owned, cu *entity.CompanyUser, required []string) []string {
	if company == nil || company.IsDisabled || cu == nil {
		return nil
	}

	keys := make(map[string]bool, len(required)+2)
	for _, key := range required {
		keys[key] = true
	}
	if doc != nil && doc.OwnedBy(cu.UserID) {
		keys[KeyAllUserNotifications] = true
		for _, key := range required {
			if strings.HasSuffix(key, "_all") {
				keys[strings.TrimSuffix(key, "_all")+"_user"] = true
			}
		}
	}

	var channels []string
	for _, subscribed := range cu.Notifications.Email {
		if keys[subscribed] {
			channels = append(channels, entity.ChannelMail)
			break
		}
	}
	return channels
}

// HasChannel reports whether channel is among channels
func HasChannel(channels []string, channel string) bool {
	for _, c := range channels {
		if c == channel {
			return true
		}
	}
	return false
}
