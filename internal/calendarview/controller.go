package calendarview

import (
	"context"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

// Fetcher 拉取 [from, to] 内可能发生的工作项
type Fetcher[T calendar.Item] interface {
	Fetch(ctx context.Context, from, to time.Time) ([]T, error)
}

type FetcherFunc[T calendar.Item] func(ctx context.Context, from, to time.Time) ([]T, error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, from, to time.Time) ([]T, error) {
	return f(ctx, from, to)
}

type Options struct {
	WeekStart    time.Weekday
	Hours        calendar.HourRange
	TrackPending bool
}

var DefaultOptions = Options{
	WeekStart:    time.Sunday,
	Hours:        calendar.DefaultHourRange,
	TrackPending: true,
}

// Result 是一次加载的结果，出错时 Err 不为空，Week 和 Month 为零值
type Result[T calendar.Item] struct {
	Generation uint64
	Ref        time.Time
	Items      []T
	Week       calendar.WeeklyGrid[T]
	Month      calendar.MonthFlags
	Err        error
	// Stale 表示在这次加载完成之前已经开始了更新的加载，结果已被丢弃
	Stale bool
}

// Controller 负责拉取数据并用日历核心计算周视图和月视图，后开始的加载总是覆盖先开始的加载
type Controller[T calendar.Item] struct {
	fetcher Fetcher[T]
	opts    Options

	mu         sync.Mutex
	generation uint64
	latest     *Result[T]
}

func NewController[T calendar.Item](fetcher Fetcher[T], opts Options) *Controller[T] {
	return &Controller[T]{
		fetcher: fetcher,
		opts:    opts,
	}
}

// Range 返回加载 ref 时需要拉取的日期范围：ref 所在的整月并上 ref 所在的整周
func (c *Controller[T]) Range(ref time.Time) (from, to time.Time) {
	week := calendar.WeekDays(ref, c.opts.WeekStart)
	from, to = calendar.MonthStart(ref), calendar.MonthEnd(ref)
	if week[0].Before(from) {
		from = week[0]
	}
	if week[6].After(to) {
		to = week[6]
	}
	return from, to
}

func (c *Controller[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	return c.generation
}

func (c *Controller[T]) commit(res Result[T]) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.Generation < c.generation {
		res.Stale = true
		return res
	}

	c.latest = &res
	return res
}

// Load 拉取 ref 对应的数据并计算视图，可以并发调用
func (c *Controller[T]) Load(ctx context.Context, ref time.Time) Result[T] {
	gen := c.begin()
	ref = calendar.Day(ref)

	from, to := c.Range(ref)
	items, err := c.fetcher.Fetch(ctx, from, to)
	if err != nil {
		return c.commit(Result[T]{Generation: gen, Ref: ref, Err: err})
	}

	return c.commit(Result[T]{
		Generation: gen,
		Ref:        ref,
		Items:      items,
		Week:       calendar.ProjectWeek(items, ref, c.opts.WeekStart, c.opts.Hours),
		Month:      calendar.ReduceMonth(items, ref, c.opts.TrackPending),
	})
}

// Latest 返回最近一次未被丢弃的结果
func (c *Controller[T]) Latest() (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest == nil {
		return Result[T]{}, false
	}
	return *c.latest, true
}

func (c *Controller[T]) Options() Options {
	return c.opts
}
