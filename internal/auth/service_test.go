package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"getactive-client/internal/api"
	"getactive-client/internal/config"
	"getactive-client/internal/database"
	"getactive-client/internal/token"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *token.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, err := database.Init(config.StorageConfig{
		Path: filepath.Join(t.TempDir(), "client.db"),
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := token.NewStore(db, "")
	client := api.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 2}, store)
	return NewService(client, store), store
}

// makeJWT 拼一个带 exp 的 JWT（客户端不验签）
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, _ := json.Marshal(map[string]any{"sub": "42", "exp": exp.Unix()})
	enc := base64.RawURLEncoding.EncodeToString
	return enc(header) + "." + enc(payload) + "." + enc([]byte("sig"))
}

// ---------- 登录 ----------

func TestLogin_PersistsTokenAndSnapshot(t *testing.T) {
	tok := makeJWT(t, time.Now().Add(time.Hour))
	var requests atomic.Int32
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"token":    tok,
				"userId":   42,
				"username": "testuser",
				"email":    "testuser@bu.edu",
			},
		})
	}))

	userData, err := svc.Login("testuser", "Password123!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if userData.UserID != "42" || userData.Username != "testuser" || userData.UserEmail != "testuser@bu.edu" {
		t.Errorf("userData = %+v", userData)
	}
	if got := store.GetToken(token.KeyAuthToken); got != tok {
		t.Errorf("persisted token = %q, want login token", got)
	}

	// 同一标签页内 CurrentUser 直接用快照，不发网络请求
	requests.Store(0)
	current := svc.CurrentUser()
	if current == nil || current.UserID != "42" || current.UserEmail != "testuser@bu.edu" {
		t.Errorf("CurrentUser = %+v", current)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("CurrentUser made %d network calls, want 0", n)
	}
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]any{
				"errorCode": api.CodeWrongCredentials,
				"message":   "The provided username and password are invalid",
			},
		})
	}))

	if _, err := svc.Login("testuser", "wrongpassword"); err == nil {
		t.Fatal("expected login error")
	}
	if got := store.GetToken(token.KeyAuthToken); got != "" {
		t.Errorf("token persisted on failed login: %q", got)
	}
	if got := store.GetToken(token.KeyUserData); got != "" {
		t.Errorf("snapshot persisted on failed login: %q", got)
	}
}

// ---------- 注销 ----------

func TestLogout_ClearsLocalStateEvenOnRemoteFailure(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	store.SetToken(token.KeyAuthToken, makeJWT(t, time.Now().Add(time.Hour)))
	store.SetToken(token.KeyUserData, `{"userId":"42","username":"u","userEmail":"e"}`)

	// 远端失败要继续上抛，但本地一定清掉
	if err := svc.Logout(); err == nil {
		t.Error("expected logout to surface the remote error")
	}
	if store.GetToken(token.KeyAuthToken) != "" || store.GetToken(token.KeyUserData) != "" {
		t.Error("local state not cleared after logout")
	}
}

// ---------- 本地会话 ----------

func TestCurrentUser_ExpiredTokenClearsBoth(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("CurrentUser must not hit the network")
	}))

	store.SetToken(token.KeyAuthToken, makeJWT(t, time.Now().Add(-time.Hour)))
	store.SetToken(token.KeyUserData, `{"userId":"42","username":"u","userEmail":"e"}`)

	if got := svc.CurrentUser(); got != nil {
		t.Errorf("CurrentUser with expired token = %+v, want nil", got)
	}
	if store.GetToken(token.KeyAuthToken) != "" || store.GetToken(token.KeyUserData) != "" {
		t.Error("expired session not cleared")
	}
}

func TestIsAuthenticated(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if svc.IsAuthenticated() {
		t.Error("authenticated with no token")
	}
	store.SetToken(token.KeyAuthToken, makeJWT(t, time.Now().Add(-time.Minute)))
	if svc.IsAuthenticated() {
		t.Error("authenticated with expired token")
	}
	store.SetToken(token.KeyAuthToken, makeJWT(t, time.Now().Add(time.Hour)))
	if !svc.IsAuthenticated() {
		t.Error("not authenticated with valid token")
	}
}

// ---------- 注册 / 确认 / 重发 ----------

func TestRegister_ReturnsConfirmationToken(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "testuser2" || body["email"] != "testuser2@bu.edu" {
			t.Errorf("unexpected register body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"token": "confirm-me"},
		})
	}))

	got, err := svc.Register("testuser2", "testuser2@bu.edu", "Password123!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got != "confirm-me" {
		t.Errorf("confirmation token = %q", got)
	}
	// 注册不建立会话
	if store.GetToken(token.KeyAuthToken) != "" {
		t.Error("register must not persist a session token")
	}
}

func TestConfirmRegistration_TokenInvalidDistinguishable(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]any{"errorCode": api.CodeTokenInvalid, "message": "The provided token is invalid"},
		})
	}))

	err := svc.ConfirmRegistration("nope")
	if !api.IsCode(err, api.CodeTokenInvalid) {
		t.Errorf("expected TOKEN_INVALID, got %v", err)
	}
}

func TestResendConfirmation_NeverPanics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	db, err := database.Init(config.StorageConfig{Path: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	database.AutoMigrate(db)
	store := token.NewStore(db, "")
	client := api.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 1}, store)
	svc := NewService(client, store)
	srv.Close() // 服务彻底不可达

	err = svc.ResendConfirmation("testuser", "testuser@bu.edu")
	if !api.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

// ---------- 头像 ----------

func TestUpdateAvatar_PatchesOnlyAvatar(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/user/avatar" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"avatar": "data:image/png;base64,XYZ"},
		})
	}))

	store.SetToken(token.KeyAuthToken, makeJWT(t, time.Now().Add(time.Hour)))
	store.SetToken(token.KeyUserData, `{"userId":"42","username":"testuser","userEmail":"t@bu.edu"}`)

	avatar, err := svc.UpdateAvatar("data:image/png;base64,XYZ")
	if err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if avatar != "data:image/png;base64,XYZ" {
		t.Errorf("avatar = %q", avatar)
	}

	current := svc.CurrentUser()
	if current == nil {
		t.Fatal("CurrentUser = nil after avatar update")
	}
	if current.Avatar != "data:image/png;base64,XYZ" {
		t.Errorf("snapshot avatar = %q", current.Avatar)
	}
	// 其余字段原样保留
	if current.UserID != "42" || current.Username != "testuser" || current.UserEmail != "t@bu.edu" {
		t.Errorf("snapshot fields changed: %+v", current)
	}
}
