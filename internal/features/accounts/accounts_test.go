package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/points-bot/internal/common"
)

type memBackend struct {
	data    []byte
	saveErr error
	loadErr error
	saves   int
}

func (m *memBackend) Load(context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memBackend) Save(_ context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := common.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, period := range []common.Period{common.PeriodWeekly, common.PeriodMonthly} {
		t.Run(string(period), func(t *testing.T) {
			codec := NewCodec(period)

			snap := NewSnapshot()
			a := snap.Account(42)
			a.Points = 380
			a.LoginStreak = 3
			a.PeriodMessageCount = 4
			a.LastActivityDate = date(t, "2024-01-03")
			a.DisplayName = "Вася"
			b := snap.Account(-100500)
			b.Points = -20
			snap.LastResetDate = date(t, "2024-01-01")

			data, err := codec.Encode(snap)
			require.NoError(t, err)
			assert.Contains(t, string(data), period.CounterKey())

			got, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, snap, got)
		})
	}
}

func TestCodec_EmptySnapshot(t *testing.T) {
	codec := NewCodec(common.PeriodWeekly)

	got, err := codec.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got.Accounts)
	assert.Nil(t, got.LastResetDate)

	data, err := codec.Encode(NewSnapshot())
	require.NoError(t, err)
	got, err = codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, NewSnapshot(), got)
}

func TestCodec_ReadsLegacyDocument(t *testing.T) {
	// Документ без user_names и last_reset_date
	raw := `{
		"user_points": {"1": 120, "2": 20},
		"last_login_date": {"1": "2024-01-01"},
		"login_streaks": {"1": 1},
		"weekly_message_count": {"1": 1, "2": 1}
	}`
	snap, err := NewCodec(common.PeriodWeekly).Decode([]byte(raw))
	require.NoError(t, err)

	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, int64(120), snap.Accounts[1].Points)
	assert.Equal(t, 1, snap.Accounts[1].LoginStreak)
	assert.Equal(t, "2024-01-01", common.FormatDate(*snap.Accounts[1].LastActivityDate))
	assert.Nil(t, snap.Accounts[2].LastActivityDate)
	assert.Equal(t, 1, snap.Accounts[2].PeriodMessageCount)
	assert.Nil(t, snap.LastResetDate)
}

func TestCodec_WarnsAboutOtherPeriodCounters(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	raw := `{
		"user_points": {"1": 40, "2": 20},
		"weekly_message_count": {"1": 2, "2": 1},
		"monthly_message_count": {"1": 9}
	}`
	snap, err := NewCodec(common.PeriodMonthly).Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 9, snap.Accounts[1].PeriodMessageCount)
	assert.Equal(t, 0, snap.Accounts[2].PeriodMessageCount)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, common.PeriodMonthly, entry.Data["period"])
	assert.Equal(t, 2, entry.Data["dropped_users"])

	// Без чужих счётчиков предупреждения нет
	hook.Reset()
	_, err = NewCodec(common.PeriodWeekly).Decode([]byte(`{"weekly_message_count": {"1": 2}}`))
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}

func TestCodec_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"не JSON", `{"user_points": `},
		{"id не число", `{"user_points": {"abc": 1}}`},
		{"плохая дата", `{"user_points": {}, "last_login_date": {"1": "01.01.2024"}}`},
		{"отрицательная серия", `{"login_streaks": {"1": -1}}`},
		{"плохая дата сброса", `{"last_reset_date": "вчера"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(common.PeriodWeekly).Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, common.ErrCorruptData)
		})
	}
}

func TestPersistenceStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	backend := &memBackend{}
	p := NewPersistenceStore(backend, NewCodec(common.PeriodWeekly))

	empty, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Accounts)

	snap := NewSnapshot()
	snap.Account(7).Points = 140
	require.NoError(t, p.Save(ctx, snap))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(140), got.Accounts[7].Points)

	backend.loadErr = errors.New("connection refused")
	_, err = p.Load(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrCorruptData)
}

func TestStore_UpdateCommitsAfterFlush(t *testing.T) {
	ctx := context.Background()
	backend := &memBackend{}
	store := NewStore(nil, NewPersistenceStore(backend, NewCodec(common.PeriodWeekly)))

	err := store.Update(ctx, func(s *Snapshot) error {
		s.Account(1).Points += 20
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), store.Account(1).Points)
	assert.Equal(t, 1, backend.saves)
}

func TestStore_UpdateRollsBack(t *testing.T) {
	ctx := context.Background()
	backend := &memBackend{}
	store := NewStore(nil, NewPersistenceStore(backend, NewCodec(common.PeriodWeekly)))
	require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
		s.Account(1).Points = 100
		s.Account(1).LastActivityDate = date(t, "2024-01-01")
		return nil
	}))

	t.Run("ошибка транзакции", func(t *testing.T) {
		err := store.Update(ctx, func(s *Snapshot) error {
			s.Account(1).Points = 0
			s.Account(2).Points = 5
			return common.ErrInsufficientFunds
		})
		assert.ErrorIs(t, err, common.ErrInsufficientFunds)
		assert.Equal(t, int64(100), store.Account(1).Points)
		store.View(func(s *Snapshot) {
			_, ok := s.Accounts[2]
			assert.False(t, ok)
		})
	})

	t.Run("ошибка записи", func(t *testing.T) {
		backend.saveErr = errors.New("disk full")
		defer func() { backend.saveErr = nil }()

		err := store.Update(ctx, func(s *Snapshot) error {
			acc := s.Account(1)
			acc.Points = 999
			*acc.LastActivityDate = acc.LastActivityDate.AddDate(0, 0, 1)
			return nil
		})
		assert.Error(t, err)
		acc := store.Account(1)
		assert.Equal(t, int64(100), acc.Points)
		assert.Equal(t, "2024-01-01", common.FormatDate(*acc.LastActivityDate))
	})
}

func TestOpen_CorruptStartsEmpty(t *testing.T) {
	backend := &memBackend{data: []byte("not json")}
	store, err := Open(context.Background(), NewPersistenceStore(backend, NewCodec(common.PeriodWeekly)))
	require.NoError(t, err)
	store.View(func(s *Snapshot) { assert.Empty(t, s.Accounts) })
}

func TestOpen_BackendError(t *testing.T) {
	backend := &memBackend{loadErr: errors.New("timeout")}
	_, err := Open(context.Background(), NewPersistenceStore(backend, NewCodec(common.PeriodWeekly)))
	assert.Error(t, err)
}

func TestSnapshot_RollPeriod(t *testing.T) {
	snap := NewSnapshot()
	snap.Account(1).PeriodMessageCount = 5
	snap.Account(2).PeriodMessageCount = 3

	monday := *date(t, "2024-01-01")
	assert.True(t, snap.RollPeriod(monday))
	assert.Equal(t, 0, snap.Accounts[1].PeriodMessageCount)

	snap.Account(1).PeriodMessageCount = 2
	assert.False(t, snap.RollPeriod(monday))
	assert.Equal(t, 2, snap.Accounts[1].PeriodMessageCount)

	assert.True(t, snap.RollPeriod(monday.AddDate(0, 0, 7)))
	assert.Equal(t, 0, snap.Accounts[1].PeriodMessageCount)
	assert.Equal(t, "2024-01-08", common.FormatDate(*snap.LastResetDate))
}

func TestSnapshot_Helpers(t *testing.T) {
	snap := NewSnapshot()
	snap.Account(3).Points = 10
	snap.Account(1).Points = -4
	assert.Equal(t, []int64{1, 3}, snap.UserIDs())

	acc := snap.Peek(99)
	assert.Equal(t, int64(99), acc.UserID)
	_, ok := snap.Accounts[99]
	assert.False(t, ok)
}
