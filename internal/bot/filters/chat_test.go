package filters

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

const activityChat int64 = -100

type fakeChecker struct {
	status string
	err    error
	calls  int
}

func (f *fakeChecker) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.calls++
	return tgbotapi.ChatMember{Status: f.status}, f.err
}

type fakeSender struct{ texts []string }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func message(chatID int64, chatType string, userID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID, Type: chatType},
		From: &tgbotapi.User{ID: userID},
	}
}

func TestChatFilter_CheckAccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		msg     *tgbotapi.Message
		checker *fakeChecker
		want    bool
		denied  bool
	}{
		{"основной чат", message(activityChat, "supergroup", 1), &fakeChecker{}, true, false},
		{"чужая группа", message(-5, "group", 1), &fakeChecker{}, false, false},
		{"личка участника", message(1, "private", 1), &fakeChecker{status: "member"}, true, false},
		{"личка ушедшего", message(1, "private", 1), &fakeChecker{status: "left"}, false, true},
		{"ошибка API", message(1, "private", 1), &fakeChecker{err: errors.New("timeout")}, false, false},
		{"без отправителя", &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: activityChat}}, &fakeChecker{}, false, false},
		{"nil", nil, &fakeChecker{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			f := NewChatFilter(activityChat, tt.checker, sender)
			assert.Equal(t, tt.want, f.CheckAccess(ctx, tt.msg))
			assert.Equal(t, tt.denied, len(sender.texts) == 1)
		})
	}
}

func TestChatFilter_CachesMembership(t *testing.T) {
	ctx := context.Background()
	checker := &fakeChecker{status: "member"}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	f := NewChatFilter(activityChat, checker, &fakeSender{})
	f.now = func() time.Time { return now }

	// Писал в основной чат — в личке проверка не нужна
	assert.True(t, f.CheckAccess(ctx, message(activityChat, "supergroup", 1)))
	assert.True(t, f.CheckAccess(ctx, message(1, "private", 1)))
	assert.Equal(t, 0, checker.calls)

	now = now.Add(memberCacheTTL)
	assert.True(t, f.CheckAccess(ctx, message(1, "private", 1)))
	assert.Equal(t, 1, checker.calls)
}

func TestChatFilter_IsActivityChat(t *testing.T) {
	f := NewChatFilter(activityChat, nil, nil)
	assert.True(t, f.IsActivityChat(activityChat))
	assert.False(t, f.IsActivityChat(1))
}
