package middleware

import (
	"bytes"
	"encoding/base64"
	"io"

	"getactive-client/internal/models"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func encryptField(encryptKey, plain string) (string, error) {
	if plain == "" || encryptKey == "" {
		return plain, nil
	}
	b, err := util.EncryptAES(encryptKey, []byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// AuditMiddleware 把登录用户发起的操作记到本地审计表里。
// 配置了加密密钥时路径和动作不存明文。
func AuditMiddleware(db *gorm.DB, encryptKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取当前用户名
		var username string
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.Session); ok && user != nil {
				username = user.Username
			}
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		// 只记录登录用户的操作
		if username == "" {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		encPath, _ := encryptField(encryptKey, path)
		encAction, _ := encryptField(encryptKey, action)

		entry := models.AuditLog{
			Username: username,
			Method:   c.Request.Method,
		}
		if encryptKey != "" {
			entry.PathEnc = encPath
			entry.ActionEnc = encAction
		} else {
			entry.Path = path
			entry.Action = action
		}

		_ = db.Create(&entry).Error
	}
}
