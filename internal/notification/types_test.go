package notification

import (
	"testing"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestRequiredKeys(t *testing.T) {
	assert.Equal(t, []string{"all_notifications", "quote_expired", "quote_expired_all"}, RequiredKeys("quote_expired"))
}

func TestFindUserNotificationTypes(t *testing.T) {
	company := &entity.Company{ID: 1}
	quote := &entity.Quote{UserID: 10, AssignedUserID: 11}
	required := RequiredKeys("quote_expired")

	member := func(userID int64, keys ...string) *entity.CompanyUser {
		return &entity.CompanyUser{UserID: userID, Notifications: entity.NotificationSettings{Email: keys}}
	}

	tests := []struct {
		name    string
		company *entity.Company
		cu      *entity.CompanyUser
		want    []string
	}{
		{name: "all notifications", company: company, cu: member(20, "all_notifications"), want: []string{"mail"}},
		{name: "specific event", company: company, cu: member(20, "quote_expired_all"), want: []string{"mail"}},
		{name: "unrelated key", company: company, cu: member(20, "invoice_sent_all"), want: nil},
		{name: "no subscriptions", company: company, cu: member(20), want: nil},
		{name: "personal key but not owner", company: company, cu: member(20, "quote_expired_user"), want: nil},
		{name: "personal key as creator", company: company, cu: member(10, "quote_expired_user"), want: []string{"mail"}},
		{name: "all user notifications as assignee", company: company, cu: member(11, "all_user_notifications"), want: []string{"mail"}},
		{name: "disabled company", company: &entity.Company{IsDisabled: true}, cu: member(20, "all_notifications"), want: nil},
		{name: "several matching keys yield one channel", company: company, cu: member(10, "all_notifications", "quote_expired_user"), want: []string{"mail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindUserNotificationTypes(tt.company, quote, tt.cu, required)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasChannel(t *testing.T) {
	assert.True(t, HasChannel([]string{"mail"}, entity.ChannelMail))
	assert.False(t, HasChannel(nil, entity.ChannelMail))
}
