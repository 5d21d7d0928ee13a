package session

import (
	"sync"

	"getactive-client/internal/auth"
	"getactive-client/internal/models"
)

// Context 是进程内唯一的共享会话状态（{user, loading}），启动时构造一次，
// 通过依赖注入传给视图层，不做包级单例。只有 Auth Service 的结果会改写它。
type Context struct {
	mu      sync.RWMutex
	user    *models.Session
	loading bool

	auth *auth.Service
}

// NewContext builds the single session context. Call Init once at startup.
func NewContext(authSvc *auth.Service) *Context {
	return &Context{auth: authSvc, loading: true}
}

// Init 启动时恢复会话：本地存在有效未过期 token 时直接采用快照，
// 不发网络请求。
func (c *Context) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auth.IsAuthenticated() {
		c.user = c.auth.CurrentUser()
	}
	c.loading = false
}

// User returns the current session snapshot, nil when signed out.
func (c *Context) User() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Loading reports whether startup restoration has finished.
func (c *Context) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// HandleUnauthorized 被注册到 HTTP Client 的 401 回调上：
// 只清内存态，持久层由 token 过期检查自己收敛。
func (c *Context) HandleUnauthorized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}

// Login 登录成功后写入会话快照
func (c *Context) Login(username, password string) error {
	userData, err := c.auth.Login(username, password)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.user = userData
	c.loading = false
	c.mu.Unlock()
	return nil
}

// Logout 无论远端注销成败，内存里的会话都会被清掉
func (c *Context) Logout() error {
	err := c.auth.Logout()
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
	return err
}

// Register 注册不建立会话，返回服务端下发的确认 token
func (c *Context) Register(username, email, password string) (string, error) {
	return c.auth.Register(username, email, password)
}

// ConfirmRegistration 提交邮箱确认码
func (c *Context) ConfirmRegistration(token string) error {
	return c.auth.ConfirmRegistration(token)
}

// ResendConfirmation 重发确认邮件
func (c *Context) ResendConfirmation(username, email string) error {
	return c.auth.ResendConfirmation(username, email)
}

// UpdateAvatar 成功后只补丁内存会话的 avatar 字段。
// 写时复制再替换指针：User() 已经发出去的快照绝不被原地改写。
func (c *Context) UpdateAvatar(avatarDataURI string) error {
	avatar, err := c.auth.UpdateAvatar(avatarDataURI)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.user != nil {
		patched := *c.user
		patched.Avatar = avatar
		c.user = &patched
	}
	c.mu.Unlock()
	return nil
}

// IsAuthenticated 当且仅当 token 存在且未过期
func (c *Context) IsAuthenticated() bool {
	return c.auth.IsAuthenticated()
}
