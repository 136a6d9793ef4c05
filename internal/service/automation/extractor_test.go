package automation

import (
	"context"
	"strings"
	"testing"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository/memory"
	"draftpad-backend/internal/service/editparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDetectSchedule(t *testing.T) {
	cases := []struct {
		name        string
		instruction string
		wantCron    string
		wantOK      bool
	}{
		{name: "CJKMorning", instruction: "每天早上8点提醒我", wantCron: "0 8 * * *", wantOK: true},
		{name: "CJKEvening", instruction: "每天晚上8点发一条动态", wantCron: "0 20 * * *", wantOK: true},
		{name: "CJKHalfHour", instruction: "每日上午9点半汇总新闻", wantCron: "30 9 * * *", wantOK: true},
		{name: "CJKWithMinutes", instruction: "天天下午3:15检查竞品", wantCron: "15 15 * * *", wantOK: true},
		{name: "CJKMidnight", instruction: "每天晚上12点提醒我睡觉", wantCron: "0 0 * * *", wantOK: true},
		{name: "CJKNightMidnight", instruction: "每天夜里12点备份相册", wantCron: "0 0 * * *", wantOK: true},
		{name: "CJKNoonStaysNoon", instruction: "每天中午12点发帖", wantCron: "0 12 * * *", wantOK: true},
		{name: "EnglishDaily", instruction: "remind me daily at 9am", wantCron: "0 9 * * *", wantOK: true},
		{name: "EnglishEveryDayPM", instruction: "post this every day at 6:30 pm", wantCron: "30 18 * * *", wantOK: true},
		{name: "EnglishEachDayMidnight", instruction: "each day at 12am rotate the album", wantCron: "0 0 * * *", wantOK: true},
		{name: "NoSchedule", instruction: "please fix the typo in my profile", wantOK: false},
		{name: "EnglishDayWithoutTime", instruction: "do this every day", wantOK: false},
		{name: "OneOffTime", instruction: "meet me at 9am tomorrow", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match, ok := DetectSchedule(tc.instruction)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantCron, match.Cron)
			}
		})
	}
}

func TestResolveTimezone(t *testing.T) {
	t.Run("ExplicitHeaderWins", func(t *testing.T) {
		tz := ResolveTimezone(RequestMeta{Timezone: "Europe/Lisbon", Country: "JP"}, ScheduleMatch{}, "UTC")
		assert.Equal(t, "Europe/Lisbon", tz)
	})

	t.Run("CountryLookup", func(t *testing.T) {
		tz := ResolveTimezone(RequestMeta{Country: "JP"}, ScheduleMatch{}, "UTC")
		assert.Equal(t, "Asia/Tokyo", tz)
	})

	t.Run("CJKPatternHint", func(t *testing.T) {
		match, ok := DetectSchedule("每天早上8点提醒我")
		require.True(t, ok)
		tz := ResolveTimezone(RequestMeta{}, match, "UTC")
		assert.Equal(t, "Asia/Shanghai", tz)
	})

	t.Run("Default", func(t *testing.T) {
		tz := ResolveTimezone(RequestMeta{}, ScheduleMatch{}, "UTC")
		assert.Equal(t, "UTC", tz)
	})
}

type stubNotifier struct {
	resyncs int
}

func (s *stubNotifier) TriggerResync(ctx context.Context) error {
	s.resyncs++
	return nil
}

func testExtractor(store *memory.AutomationStore, notifier SchedulerNotifier) *Extractor {
	return NewExtractor(store, notifier, Config{
		CallbackOrigin:       "https://api.example.com",
		DefaultTimezone:      "UTC",
		ConfirmWindowSeconds: 60,
	}, zap.NewNop())
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("RegistersDisabledAutomationWithTrailer", func(t *testing.T) {
		store := memory.NewAutomationStore()
		notifier := &stubNotifier{}
		e := testExtractor(store, notifier)

		spec, trailer := e.Extract(ctx, "u1", "每天早上8点给我新闻简报", RequestMeta{})
		require.NotNil(t, spec)

		assert.Equal(t, "0 8 * * *", spec.Cron)
		assert.Equal(t, "Asia/Shanghai", spec.Timezone)
		assert.Equal(t, domain.AutomationNewsBriefing, spec.Kind)
		assert.False(t, spec.Enabled)
		assert.True(t, spec.AutoConfirm)
		assert.Equal(t, 60, spec.ConfirmAfterSeconds)
		assert.NotEmpty(t, spec.TaskPlan)

		assert.Contains(t, trailer, editparse.Delimiter)
		assert.Contains(t, trailer, spec.ID)
		assert.True(t, strings.Contains(trailer, "0 8 * * *"))

		stored, err := store.Get(ctx, spec.ID)
		require.NoError(t, err)
		assert.False(t, stored.Enabled)
		assert.Equal(t, 1, notifier.resyncs)
	})

	t.Run("ClassifiesCompetitorMonitor", func(t *testing.T) {
		store := memory.NewAutomationStore()
		e := testExtractor(store, &stubNotifier{})

		spec, _ := e.Extract(ctx, "u1", "check our competitor pages every day at 7am", RequestMeta{Country: "US"})
		require.NotNil(t, spec)
		assert.Equal(t, domain.AutomationCompetitorMonitor, spec.Kind)
		assert.Equal(t, "America/New_York", spec.Timezone)
	})

	t.Run("NoScheduleNoAutomation", func(t *testing.T) {
		store := memory.NewAutomationStore()
		e := testExtractor(store, &stubNotifier{})

		spec, trailer := e.Extract(ctx, "u1", "fix the typo please", RequestMeta{})
		assert.Nil(t, spec)
		assert.Empty(t, trailer)
		assert.Equal(t, 0, store.Count())
	})

	t.Run("NoCallbackOriginSkipsExtraction", func(t *testing.T) {
		store := memory.NewAutomationStore()
		e := NewExtractor(store, &stubNotifier{}, Config{DefaultTimezone: "UTC"}, zap.NewNop())

		spec, _ := e.Extract(ctx, "u1", "remind me daily at 9am", RequestMeta{})
		assert.Nil(t, spec)
		assert.Equal(t, 0, store.Count())
	})
}
