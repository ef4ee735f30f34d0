package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// ErrUnauthorized 表示会话已失效，需要重新登录
var ErrUnauthorized = errors.New("用户未登录")

// APIError 是后端返回 success 为 false 时的错误
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client 通过 cookie 保存登录状态，可以并发使用
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("无效的服务器地址 %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("无法解析响应 (%s): %w", resp.Status, err)
	}

	if !env.Success {
		if env.Message == ErrUnauthorized.Error() || env.Message == "无效的令牌" {
			return ErrUnauthorized
		}
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	user := &domain.User{}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	user := &domain.User{}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

func rangeQuery(from, to time.Time) url.Values {
	return url.Values{
		"from": {calendar.FormatDate(from)},
		"to":   {calendar.FormatDate(to)},
	}
}

func (c *Client) SupplierWorks(ctx context.Context, from, to time.Time) ([]*domain.Work, error) {
	works := make([]*domain.Work, 0)
	if err := c.do(ctx, http.MethodGet, "/supplier/works", rangeQuery(from, to), nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

func (c *Client) VolunteerWorks(ctx context.Context, from, to time.Time, preferred bool) ([]*domain.VolunteerWork, error) {
	q := rangeQuery(from, to)
	if preferred {
		q.Set("preferred", "true")
	}

	works := make([]*domain.VolunteerWork, 0)
	if err := c.do(ctx, http.MethodGet, "/volunteer/works", q, nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

func (c *Client) VolunteerSessions(ctx context.Context, from, to time.Time) ([]*domain.WorkSession, error) {
	sessions := make([]*domain.WorkSession, 0)
	if err := c.do(ctx, http.MethodGet, "/volunteer/sessions", rangeQuery(from, to), nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) SupplierWorksFetcher() calendarview.FetcherFunc[*domain.Work] {
	return c.SupplierWorks
}

func (c *Client) VolunteerWorksFetcher(preferred bool) calendarview.FetcherFunc[*domain.VolunteerWork] {
	return func(ctx context.Context, from, to time.Time) ([]*domain.VolunteerWork, error) {
		return c.VolunteerWorks(ctx, from, to, preferred)
	}
}

func (c *Client) VolunteerSessionsFetcher() calendarview.FetcherFunc[*domain.WorkSession] {
	return c.VolunteerSessions
}
