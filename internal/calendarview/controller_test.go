package calendarview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

type fakeItem struct {
	id      int
	start   time.Time
	end     time.Time
	blocks  []calendar.HourBlock
	pending int
}

func (i fakeItem) WorkType() calendar.WorkType      { return calendar.WorkTypeRecurring }
func (i fakeItem) Span() (time.Time, time.Time)     { return i.start, i.end }
func (i fakeItem) HourBlocks() []calendar.HourBlock { return i.blocks }
func (i fakeItem) PendingCount() int                { return i.pending }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mayMondays() fakeItem {
	return fakeItem{
		id:      1,
		start:   date(2024, time.May, 1),
		end:     date(2024, time.May, 31),
		blocks:  []calendar.HourBlock{{Hour: 9, Weekday: time.Monday}},
		pending: 1,
	}
}

func TestControllerLoad(t *testing.T) {
	var gotFrom, gotTo time.Time
	fetcher := FetcherFunc[fakeItem](func(ctx context.Context, from, to time.Time) ([]fakeItem, error) {
		gotFrom, gotTo = from, to
		return []fakeItem{mayMondays()}, nil
	})

	c := NewController[fakeItem](fetcher, DefaultOptions)
	res := c.Load(context.Background(), date(2024, time.May, 8))

	require.NoError(t, res.Err)
	assert.False(t, res.Stale)
	assert.Equal(t, date(2024, time.May, 1), gotFrom)
	assert.Equal(t, date(2024, time.May, 31), gotTo)
	assert.Len(t, res.Week.Cell(time.Monday, 9, calendar.DefaultHourRange), 1)
	assert.Equal(t, []int{6, 13, 20, 27}, res.Month.Days())
	assert.Equal(t, []int{6, 13, 20, 27}, res.Month.PendingDays())

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, res.Generation, latest.Generation)
}

func TestControllerRangeCoversWeekOutsideMonth(t *testing.T) {
	c := NewController[fakeItem](nil, DefaultOptions)

	from, to := c.Range(date(2024, time.May, 30))
	assert.Equal(t, date(2024, time.May, 1), from)
	assert.Equal(t, date(2024, time.June, 1), to)

	from, to = c.Range(date(2024, time.May, 2))
	assert.Equal(t, date(2024, time.April, 28), from)
	assert.Equal(t, date(2024, time.May, 31), to)
}

func TestControllerFetchErrorIsReturned(t *testing.T) {
	errBoom := errors.New("网络错误")
	fetcher := FetcherFunc[fakeItem](func(ctx context.Context, from, to time.Time) ([]fakeItem, error) {
		return nil, errBoom
	})

	c := NewController[fakeItem](fetcher, DefaultOptions)
	res := c.Load(context.Background(), date(2024, time.May, 8))

	assert.ErrorIs(t, res.Err, errBoom)
	assert.Nil(t, res.Items)
}

func TestControllerDiscardsStaleLoad(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	fetcher := FetcherFunc[fakeItem](func(ctx context.Context, from, to time.Time) ([]fakeItem, error) {
		if from.Month() == time.May {
			// 第一次加载（五月）被阻塞，直到第二次加载完成
			close(started)
			<-release
		}
		return []fakeItem{mayMondays()}, nil
	})

	c := NewController[fakeItem](fetcher, DefaultOptions)

	var wg sync.WaitGroup
	var first Result[fakeItem]
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = c.Load(context.Background(), date(2024, time.May, 15))
	}()

	<-started
	second := c.Load(context.Background(), date(2024, time.July, 15))
	close(release)
	wg.Wait()

	assert.False(t, second.Stale)
	assert.True(t, first.Stale)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, date(2024, time.July, 15), latest.Ref)
	assert.Equal(t, second.Generation, latest.Generation)
}

func TestNavigator(t *testing.T) {
	n := NewNavigator(date(2024, time.January, 31), ModeMonth)
	n.now = func() time.Time { return time.Date(2024, time.May, 8, 15, 30, 0, 0, time.UTC) }

	assert.Equal(t, date(2024, time.February, 29), n.Next())
	assert.Equal(t, date(2024, time.January, 29), n.Prev())

	n.SetMode(ModeWeek)
	assert.Equal(t, date(2024, time.February, 5), n.Next())
	assert.Equal(t, date(2024, time.January, 29), n.PrevWeek())
	assert.Equal(t, date(2024, time.February, 29), n.NextMonth())
	assert.Equal(t, date(2024, time.January, 29), n.PrevMonth())

	assert.Equal(t, date(2024, time.May, 8), n.Today())
	assert.Equal(t, date(2024, time.May, 20), n.SetDay(20))
	assert.Equal(t, date(2024, time.May, 20), n.SetDay(32))

	assert.Equal(t, ModeMonth, n.ToggleMode())
	assert.Equal(t, ModeWeek, n.ToggleMode())
}
