package router

import (
	"net/http"

	"getactive-client/internal/activity"
	"getactive-client/internal/config"
	"getactive-client/internal/handler"
	"getactive-client/internal/middleware"
	"getactive-client/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the local Gin engine serving the client pages.
func SetupRouter(cfg *config.Config, db *gorm.DB, sess *session.Context, activities *activity.Service) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.LoadHTMLGlob("web/templates/*")

	authHandler := handler.NewAuthHandler(sess)
	homeHandler := handler.NewHomeHandler(sess, activities, cfg.App.PageSize)
	discoveryHandler := handler.NewDiscoveryHandler(sess, activities)
	createHandler := handler.NewCreateHandler(sess, activities)
	profileHandler := handler.NewProfileHandler(sess)

	// Root -> login page
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})

	// 登录/注册/确认不需要会话
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/register", authHandler.RegisterPage)
	r.POST("/register", authHandler.Register)
	r.GET("/register/confirmation", authHandler.ConfirmPage)
	r.POST("/register/confirmation", authHandler.Confirm)
	r.POST("/register/confirmation/resend", authHandler.Resend)

	// 需要有效会话才能访问的页面；401/过期统一由中间件跳回 /login
	protected := r.Group("")
	protected.Use(
		middleware.RequireSession(sess),
		middleware.AuditMiddleware(db, cfg.Storage.EncryptionKey),
	)

	protected.GET("/home", homeHandler.Home)
	protected.POST("/home/join", homeHandler.Join)
	protected.POST("/home/leave", homeHandler.Leave)
	protected.POST("/home/delete", homeHandler.Delete)
	protected.GET("/activities/:id/participants", homeHandler.Participants)

	protected.GET("/discover", discoveryHandler.Discover)
	protected.GET("/discover/export/xlsx", discoveryHandler.ExportXLSX)

	protected.GET("/activities/new", createHandler.CreatePage)
	protected.POST("/activities/new", createHandler.Create)

	protected.GET("/me", profileHandler.Me)
	protected.POST("/profile/avatar", profileHandler.UpdateAvatar)

	protected.POST("/logout", authHandler.Logout)

	return r
}
