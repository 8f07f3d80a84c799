package reddit

import (
	"Opportune/internal/api/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"
)

var ErrNotConfigured = errors.New("reddit credentials not configured")

// Post 列表接口返回的帖子字段
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	Score       int     `json:"score"`
	Ups         int     `json:"ups"`
	Downs       int     `json:"downs"`
	NumComments int     `json:"num_comments"`
}

// CreatedAt created_utc 转为时间
func (p Post) CreatedAt() time.Time {
	return time.Unix(int64(p.Created), 0).UTC()
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data Post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Client application-only OAuth 的 Reddit 客户端
type Client struct {
	clientID     string
	clientSecret string
	userAgent    string
	authURL      string
	apiURL       string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(cfg config.RedditConfig) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		authURL:      defaultAuthURL,
		apiURL:       defaultAPIURL,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// WithEndpoints 替换认证与 API 地址
func (c *Client) WithEndpoints(authURL, apiURL string) *Client {
	c.authURL = authURL
	c.apiURL = apiURL
	return c
}

func (c *Client) IsEnabled() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// FetchNew 拉取某个 subreddit 最新的帖子
func (c *Client) FetchNew(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	if !c.IsEnabled() {
		return nil, ErrNotConfigured
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}
	if limit <= 0 {
		limit = 100
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("User-Agent", c.userAgent).
		SetQueryParam("limit", fmt.Sprint(limit)).
		Get(fmt.Sprintf("%s/r/%s/new", c.apiURL, subreddit))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.resetToken()
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing listingResponse
	if err = json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(c.authURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode())
	}

	var auth authResponse
	if err = json.Unmarshal(resp.Body(), &auth); err != nil {
		return "", err
	}
	if auth.AccessToken == "" {
		return "", errors.New("empty access token")
	}

	c.accessToken = auth.AccessToken
	// 提前一分钟过期
	c.expiresAt = time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}
