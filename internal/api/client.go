package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"getactive-client/internal/config"
	"getactive-client/internal/token"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Client 是唯一的远端请求层：统一 baseURL、超时、Bearer 附加和 401 处理。
// 所有 service 都通过它访问平台 API，自己不持有 http.Client。
type Client struct {
	baseURL string
	http    *http.Client

	// 收到 401 时的回调（由 session 层注册，用于清理本地会话）。
	// 刷新 token 之类的补救这里有意不做。
	onUnauthorized func()
}

func NewClient(cfg config.APIConfig, tokens *token.Store) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
	}
}

// SetUnauthorizedHandler registers the hook invoked on any 401 response.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// bearerTransport 在每个出站请求上附加 Authorization: Bearer 头，
// 没有 token 时按匿名请求发出（路由是否接受由服务端决定）。
type bearerTransport struct {
	base   http.RoundTripper
	tokens *token.Store
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", uuid.NewString())

	tok := t.tokens.GetToken(token.KeyAuthToken)
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	tr := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return tr.RoundTrip(req)
}

// errorEnvelope 对应后端统一错误返回 {"errors": {...}}
type errorEnvelope struct {
	Errors struct {
		ErrorCode        string              `json:"errorCode"`
		Message          string              `json:"message"`
		ValidationErrors map[string][]string `json:"validationErrors"`
	} `json:"errors"`
}

// Do 发送一次请求并把成功响应解码到 out（out 为 nil 时丢弃响应体）。
// 返回值按错误分类（见 §errors.go）：
//   - 网络层收不到响应  → 包装 ErrUnavailable
//   - 服务端拒绝（4xx/5xx）→ *Error，带结构化错误码
//   - 响应形状对不上    → 普通 error，同时记日志
func (c *Client) Do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("api: unexpected response shape from %s %s: %v", method, path, err)
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Errors.ErrorCode != "" || env.Errors.Message != "") {
		apiErr.ErrorCode = env.Errors.ErrorCode
		if env.Errors.Message != "" {
			apiErr.Message = env.Errors.Message
		}
		apiErr.ValidationErrors = env.Errors.ValidationErrors
	}
	return apiErr
}

// Get issues a GET without a request body.
func (c *Client) Get(path string, out any) error {
	return c.Do(http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(path string, body, out any) error {
	return c.Do(http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(path string, body, out any) error {
	return c.Do(http.MethodPut, path, body, out)
}

// Delete issues a DELETE; the platform expects the target in the body
// for membership removal, so a body is allowed here.
func (c *Client) Delete(path string, body, out any) error {
	return c.Do(http.MethodDelete, path, body, out)
}
