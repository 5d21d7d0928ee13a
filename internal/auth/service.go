package auth

import (
	"encoding/json"
	"fmt"

	"getactive-client/internal/api"
	"getactive-client/internal/models"
	"getactive-client/internal/token"
)

// Service 是认证相关远端接口的薄门面，并负责本地会话状态：
// token 和会话快照要么一起写入、要么一起清掉，只有头像是单独补丁。
type Service struct {
	api    *api.Client
	tokens *token.Store
}

func NewService(apiClient *api.Client, tokens *token.Store) *Service {
	return &Service{api: apiClient, tokens: tokens}
}

// ---------- 注册 / 确认 ----------

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResp struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Register 发起注册。成功不建立会话（账号待确认），返回服务端下发的
// 确认 token。字段级 validationErrors 和网络不可达都包含在 err 里，
// 由视图层区分展示。
func (s *Service) Register(username, email, password string) (string, error) {
	var resp registerResp
	if err := s.api.Post("/register", registerReq{
		Username: username,
		Email:    email,
		Password: password,
	}, &resp); err != nil {
		return "", err
	}
	return resp.Data.Token, nil
}

// ConfirmRegistration 提交邮箱里收到的确认码。
// TOKEN_INVALID 通过 api.IsCode 区分，视图据此展示专门的提示。
func (s *Service) ConfirmRegistration(confirmToken string) error {
	return s.api.Post("/register/confirmation", map[string]string{
		"token": confirmToken,
	}, nil)
}

// ResendConfirmation 重发确认邮件。UI 只有“发送并关闭”一个动作，
// 所以任何失败都只作为返回值带回，绝不 panic。
func (s *Service) ResendConfirmation(username, email string) error {
	return s.api.Post("/register/confirmation/resend", map[string]string{
		"username": username,
		"email":    email,
	}, nil)
}

// ---------- 登录 / 注销 ----------

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Data struct {
		Token    string      `json:"token"`
		UserID   json.Number `json:"userId"`
		Username string      `json:"username"`
		Email    string      `json:"email"`
	} `json:"data"`
}

// Login 登录成功后持久化 bearer token 和会话快照；失败时不碰本地状态。
func (s *Service) Login(username, password string) (*models.Session, error) {
	var resp loginResp
	if err := s.api.Post("/login", loginReq{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return nil, fmt.Errorf("login response missing token")
	}

	session := &models.Session{
		UserID:    resp.Data.UserID.String(),
		Username:  resp.Data.Username,
		UserEmail: resp.Data.Email,
	}
	snapshot, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session snapshot: %w", err)
	}
	if err := s.tokens.SetToken(token.KeyAuthToken, resp.Data.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if err := s.tokens.SetToken(token.KeyUserData, string(snapshot)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Logout 尽力通知服务端，但无论远端成败，本地 token 和快照都会被清掉。
// 这是唯一一个清理后仍把远端错误继续上抛的路径。
func (s *Service) Logout() error {
	defer s.clearLocal()
	return s.api.Post("/auth/logout", nil, nil)
}

func (s *Service) clearLocal() {
	_ = s.tokens.RemoveToken(token.KeyAuthToken)
	_ = s.tokens.RemoveToken(token.KeyUserData)
}

// ---------- 本地会话 ----------

// CurrentUser 只读本地缓存：token 存在且未过期才返回快照，
// 否则把两者一起清掉并返回 nil。这个路径绝不发起网络请求，
// 代价是快照可能过时，直到 token 自然过期或某次调用 401。
func (s *Service) CurrentUser() *models.Session {
	tok := s.tokens.GetToken(token.KeyAuthToken)
	raw := s.tokens.GetToken(token.KeyUserData)
	if tok == "" || raw == "" || token.IsTokenExpired(tok) {
		s.clearLocal()
		return nil
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.clearLocal()
		return nil
	}
	return &session
}

// IsAuthenticated 当且仅当 token 存在且未过期
func (s *Service) IsAuthenticated() bool {
	tok := s.tokens.GetToken(token.KeyAuthToken)
	return tok != "" && !token.IsTokenExpired(tok)
}

// ---------- 头像 ----------

type avatarResp struct {
	Data struct {
		Avatar string `json:"avatar"`
	} `json:"data"`
}

// UpdateAvatar 上传 data URI 形式的头像，成功后只补丁快照里的 avatar 字段。
func (s *Service) UpdateAvatar(avatarDataURI string) (string, error) {
	var resp avatarResp
	if err := s.api.Put("/user/avatar", map[string]string{
		"avatar": avatarDataURI,
	}, &resp); err != nil {
		return "", err
	}

	avatar := resp.Data.Avatar
	if avatar == "" {
		avatar = avatarDataURI
	}

	// 只动 avatar，其余字段保持原样
	raw := s.tokens.GetToken(token.KeyUserData)
	if raw != "" {
		var session models.Session
		if err := json.Unmarshal([]byte(raw), &session); err == nil {
			session.Avatar = avatar
			if b, err := json.Marshal(&session); err == nil {
				_ = s.tokens.SetToken(token.KeyUserData, string(b))
			}
		}
	}
	return avatar, nil
}
