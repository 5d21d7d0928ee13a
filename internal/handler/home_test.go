package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"getactive-client/internal/activity"
	"getactive-client/internal/api"
	"getactive-client/internal/auth"
	"getactive-client/internal/config"
	"getactive-client/internal/database"
	"getactive-client/internal/session"
	"getactive-client/internal/token"

	"github.com/gin-gonic/gin"
)

func newHomeRouter(t *testing.T, remote http.Handler) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(remote)
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
	sess := session.NewContext(auth.NewService(client, store))
	sess.Init()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.LoadHTMLGlob("../../web/templates/*")

	h := NewHomeHandler(sess, activity.NewService(client), 10)
	r.GET("/home", h.Home)
	r.POST("/home/join", h.Join)
	r.POST("/home/delete", h.Delete)
	return r
}

// emptyLists 应答两个列表接口，其他路径交给 next
func emptyLists(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/activities":
			w.Write([]byte(`{"data":{"content":[]}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/activity/participants":
			w.Write([]byte(`{"data":{"activities":[]}}`))
		default:
			next(w, r)
		}
	}
}

// 列表接口挂了主页也要渲染，错误以横幅展示
func TestHome_RendersBannerWhenListsFail(t *testing.T) {
	r := newHomeRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":{"errorCode":"INTERNAL","message":"boom"}}`))
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "boom") {
		t.Errorf("body missing banner: %s", w.Body.String())
	}
}

// 请求途中撞上远端 401 时，当前响应直接 302 回登录页，不渲染横幅
func TestHome_RemoteUnauthorizedRedirectsLogin(t *testing.T) {
	r := newHomeRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":{"errorCode":"TOKEN_EXPIRED","message":"token expired"}}`))
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestJoin_RemoteUnauthorizedRedirectsLogin(t *testing.T) {
	r := newHomeRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":{"errorCode":"TOKEN_EXPIRED","message":"token expired"}}`))
	}))

	w := postForm(r, "/home/join", url.Values{"activityId": {"42"}})

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestJoin_RedirectsHomeOnSuccess(t *testing.T) {
	r := newHomeRouter(t, emptyLists(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost || req.URL.Path != "/activity/participants" {
			t.Errorf("unexpected call %s %s", req.Method, req.URL.Path)
		}
		w.Write([]byte(`{"data":null}`))
	}))

	w := postForm(r, "/home/join", url.Values{"activityId": {"42"}})

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/home" {
		t.Errorf("Location = %q, want /home", loc)
	}
}

// 第一次删除从不带 force；被 PARTICIPANTS_PRESENT 拒绝后
// 留在主页弹确认，第二次提交才带 force=true。
func TestDelete_TwoPhaseConfirmation(t *testing.T) {
	var forces []bool
	r := newHomeRouter(t, emptyLists(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete || req.URL.Path != "/activity/42" {
			t.Errorf("unexpected call %s %s", req.Method, req.URL.Path)
			return
		}
		body, _ := io.ReadAll(req.Body)
		var del struct {
			Force bool `json:"force"`
		}
		json.Unmarshal(body, &del)
		forces = append(forces, del.Force)

		if !del.Force {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"errors":{"errorCode":"PARTICIPANTS_PRESENT","message":"activity has participants"}}`))
			return
		}
		w.Write([]byte(`{"data":null}`))
	}))

	// 第一次：无 force，留在主页并出现确认表单
	w := postForm(r, "/home/delete", url.Values{"activityId": {"42"}})
	if w.Code != http.StatusOK {
		t.Fatalf("first delete status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Delete anyway?") {
		t.Errorf("body missing confirmation prompt: %s", body)
	}
	if !strings.Contains(body, `name="force" value="true"`) {
		t.Errorf("body missing force field: %s", body)
	}

	// 第二次：确认后带 force=true，成功重定向
	w = postForm(r, "/home/delete", url.Values{"activityId": {"42"}, "force": {"true"}})
	if w.Code != http.StatusFound {
		t.Fatalf("forced delete status = %d, want 302", w.Code)
	}

	if len(forces) != 2 || forces[0] || !forces[1] {
		t.Errorf("force flags = %v, want [false true]", forces)
	}
}
