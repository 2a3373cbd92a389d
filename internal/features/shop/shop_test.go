package shop

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/common/commontest"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

type nopSaver struct{}

func (nopSaver) Save(context.Context, *accounts.Snapshot) error { return nil }

type fakeSender struct{ sent []tgbotapi.MessageConfig }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

const shopURL = "https://forms.gle/gtUC7Au8KfWenXrD6"

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog("sticker:Стикерпак:300, role:Роль: кастомная:1000", shopURL)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{ID: "sticker", Name: "Стикерпак", Price: 300},
		{ID: "role", Name: "Роль: кастомная", Price: 1000},
	}, c.Items)
	assert.Equal(t, shopURL, c.URL)

	item, ok := c.Find("ROLE")
	require.True(t, ok)
	assert.Equal(t, int64(1000), item.Price)

	c, err = ParseCatalog("", "")
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	for _, raw := range []string{"sticker", "sticker:300", ":Имя:1", "a:Имя:0", "a:Имя:x", "a::5", "a:Имя:1,A:Другое:2"} {
		_, err := ParseCatalog(raw, "")
		assert.Error(t, err, raw)
	}
}

func newService(t *testing.T, balance int64) (*Service, *accounts.Store) {
	t.Helper()
	snap := accounts.NewSnapshot()
	snap.Account(1).Points = balance
	store := accounts.NewStore(snap, nopSaver{})
	c, err := ParseCatalog("sticker:Стикерпак:300", shopURL)
	require.NoError(t, err)
	return NewService(store, commontest.InlineRunner{}, c), store
}

func TestService_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("успех", func(t *testing.T) {
		svc, store := newService(t, 380)
		p, err := svc.Redeem(ctx, 1, "sticker")
		require.NoError(t, err)
		assert.Equal(t, int64(80), p.Balance)
		assert.Equal(t, int64(80), store.Account(1).Points)
	})

	t.Run("не хватает очков", func(t *testing.T) {
		svc, store := newService(t, 299)
		_, err := svc.Redeem(ctx, 1, "sticker")
		assert.ErrorIs(t, err, common.ErrInsufficientFunds)
		assert.Equal(t, int64(299), store.Account(1).Points)
	})

	t.Run("нет товара", func(t *testing.T) {
		svc, _ := newService(t, 1000)
		_, err := svc.Redeem(ctx, 1, "yacht")
		assert.ErrorIs(t, err, common.ErrItemNotFound)
	})
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 300)
	sender := &fakeSender{}
	h := NewHandler(svc, sender, -100)
	user := &tgbotapi.User{ID: 1, FirstName: "Вася"}

	h.HandleShop(ctx, 1)
	assert.Contains(t, sender.sent[0].Text, "Стикерпак — 300 очков (!купить sticker)")
	assert.Contains(t, sender.sent[0].Text, shopURL)

	h.HandleBuy(ctx, 1, user, []string{"sticker"})
	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[1].Text, "Остаток: 0 очков")
	assert.Equal(t, int64(-100), sender.sent[2].ChatID)
	assert.Contains(t, sender.sent[2].Text, "Вася")

	h.HandleBuy(ctx, 1, user, []string{"sticker"})
	assert.Contains(t, sender.sent[3].Text, "Недостаточно")

	h.HandleBuy(ctx, 1, user, nil)
	assert.Contains(t, sender.sent[4].Text, "Формат")
}

func TestFormatCatalog_Empty(t *testing.T) {
	assert.Equal(t, "🛒 Магазин\nПока ничего нет", FormatCatalog(Catalog{}))
}
