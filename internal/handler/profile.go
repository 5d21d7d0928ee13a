package handler

import (
	"net/http"

	"getactive-client/internal/session"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 负责当前用户资料相关的小接口
type ProfileHandler struct {
	Session *session.Context
}

func NewProfileHandler(sess *session.Context) *ProfileHandler {
	return &ProfileHandler{Session: sess}
}

// Me 返回当前会话快照（页面脚本用）
func (h *ProfileHandler) Me(c *gin.Context) {
	user := h.Session.User()
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return
	}
	util.Success(c, util.Response{
		"user": gin.H{
			"userId":    user.UserID,
			"username":  user.Username,
			"userEmail": user.UserEmail,
			"avatar":    user.Avatar,
		},
	})
}

// UpdateAvatar 接收 data URI 形式的头像并上传，成功后只更新会话里的 avatar
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	if err := util.ValidateAvatarDataURI(req.Avatar); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	if err := h.Session.UpdateAvatar(req.Avatar); err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeRemote, errorMessage(err,
			"Avatar upload is currently unavailable. Please try again later.",
			"Failed to update the avatar"))
		return
	}

	user := h.Session.User()
	avatar := ""
	if user != nil {
		avatar = user.Avatar
	}
	util.Success(c, util.Response{"avatar": avatar})
}
