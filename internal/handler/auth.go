package handler

import (
	"errors"
	"net/http"
	"strings"

	"getactive-client/internal/api"
	"getactive-client/internal/session"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责登录/注册/确认相关页面
type AuthHandler struct {
	Session *session.Context
}

func NewAuthHandler(sess *session.Context) *AuthHandler {
	return &AuthHandler{Session: sess}
}

// redirectOnAuthExpiry 处理请求途中撞上的远端 401：会话已失效，
// 当前响应直接拉回登录页，不渲染横幅。已经在 /login 上时不跳转。
// 返回 true 表示响应已经写完。
func redirectOnAuthExpiry(c *gin.Context, err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	if strings.HasPrefix(c.Request.URL.Path, "/login") {
		return false
	}
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
	return true
}

// errorMessage 把服务层错误翻成用户可见文案：
// 网络不可达、服务端拒绝、其他异常三类分开。
func errorMessage(err error, unavailable, fallback string) string {
	if api.IsUnavailable(err) {
		return unavailable
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// ---------- 登录 ----------

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	// 已登录的直接去主页
	if h.Session.IsAuthenticated() && h.Session.User() != nil {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"title": "GetActive - Login"})
}

// Login handles the login form submit. On failure the view re-renders
// on the login route with an inline error, never a redirect elsewhere.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"title":    "GetActive - Login",
			"error":    "Username and password are required",
			"username": username,
		})
		return
	}

	if err := h.Session.Login(username, password); err != nil {
		msg := errorMessage(err,
			"Login is currently unavailable. Please try again later.",
			"Login failed")
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title":    "GetActive - Login",
			"error":    msg,
			"username": username,
		})
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// Logout 注销后回到登录页；远端失败也照样清掉本地会话
func (h *AuthHandler) Logout(c *gin.Context) {
	_ = h.Session.Logout()
	c.Redirect(http.StatusFound, "/login")
}

// ---------- 注册 ----------

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"title": "GetActive - Register"})
}

// Register 处理注册表单。客户端校验先行，不合法的输入不触发网络请求。
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	render := func(status int, data gin.H) {
		data["title"] = "GetActive - Register"
		data["username"] = username
		data["email"] = email
		c.HTML(status, "register.html", data)
	}

	if err := util.ValidateUsername(username); err != nil {
		render(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := util.ValidateEmail(email); err != nil {
		render(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := util.ValidatePassword(password); err != nil {
		render(http.StatusBadRequest, gin.H{
			"error":    err.Error(),
			"strength": util.StrengthLabel(util.PasswordStrength(password)),
		})
		return
	}
	if password != confirm {
		render(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	if _, err := h.Session.Register(username, email, password); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		if api.IsCode(err, api.CodeEmailUsernameTaken) {
			render(http.StatusBadRequest, gin.H{"error": "Username or email already taken"})
			return
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) && len(apiErr.ValidationErrors) > 0 {
			// 服务端字段级校验错误优先于单条消息
			render(http.StatusBadRequest, gin.H{"validationErrors": apiErr.ValidationErrors})
			return
		}
		render(http.StatusBadGateway, gin.H{"error": errorMessage(err,
			"Registration is currently unavailable. Please try again later.",
			"Registration failed")})
		return
	}

	// 注册成功，账号待邮箱确认
	c.Redirect(http.StatusFound, "/register/confirmation")
}

// ---------- 邮箱确认 ----------

// ConfirmPage renders the confirmation-code form.
func (h *AuthHandler) ConfirmPage(c *gin.Context) {
	c.HTML(http.StatusOK, "confirm.html", gin.H{"title": "GetActive - Confirm Registration"})
}

// Confirm 提交邮箱里的确认码。TOKEN_INVALID 要给专门的提示。
func (h *AuthHandler) Confirm(c *gin.Context) {
	confirmToken := strings.TrimSpace(c.PostForm("token"))
	if confirmToken == "" {
		c.HTML(http.StatusBadRequest, "confirm.html", gin.H{
			"title": "GetActive - Confirm Registration",
			"error": "Please enter the confirmation code",
		})
		return
	}

	if err := h.Session.ConfirmRegistration(confirmToken); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		msg := "Registration confirmation failed. Please try again."
		if api.IsCode(err, api.CodeTokenInvalid) {
			msg = "Invalid confirmation token"
		} else if api.IsUnavailable(err) {
			msg = "Registration is currently unavailable. Please try again later."
		}
		c.HTML(http.StatusBadRequest, "confirm.html", gin.H{
			"title": "GetActive - Confirm Registration",
			"error": msg,
		})
		return
	}

	c.HTML(http.StatusOK, "confirm.html", gin.H{
		"title":   "GetActive - Confirm Registration",
		"success": true,
	})
}

// Resend 重发确认邮件，对话框“发送并关闭”，所以走 JSON 返回，
// 失败也只是一条普通结果，不会把错误抛给上层。
func (h *AuthHandler) Resend(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	if err := h.Session.ResendConfirmation(strings.TrimSpace(req.Username), strings.TrimSpace(req.Email)); err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeRemote, errorMessage(err,
			"Resend is currently unavailable. Please try again later.",
			"Failed to resend the confirmation email"))
		return
	}
	util.Success(c, util.Response{"message": "Confirmation email sent"})
}
