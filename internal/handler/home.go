package handler

import (
	"net/http"
	"strconv"

	"getactive-client/internal/activity"
	"getactive-client/internal/api"
	"getactive-client/internal/models"
	"getactive-client/internal/session"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
)

// HomeHandler 负责主页：
// “最近活动”和“已参加活动”两个独立拉取的列表，以及参加/退出/删除操作。
// 任何变更调用之后不复用旧数据：要么重定向回 /home，要么当场整页重取。
type HomeHandler struct {
	Session    *session.Context
	Activities *activity.Service
	PageSize   int
}

func NewHomeHandler(sess *session.Context, activities *activity.Service, pageSize int) *HomeHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &HomeHandler{Session: sess, Activities: activities, PageSize: pageSize}
}

// Home renders both lists. A fetch failure on either list surfaces as a
// banner; the page itself still renders.
func (h *HomeHandler) Home(c *gin.Context) {
	h.render(c, "", "")
}

// render 整页渲染：两个列表都重新拉取，banner/confirmDelete 由调用方带入
func (h *HomeHandler) render(c *gin.Context, banner, confirmDelete string) {
	recent, err := h.Activities.GetRecentActivities()
	if err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		if banner == "" {
			banner = errorMessage(err,
				"Activities are currently unavailable. Please try again later.",
				"Failed to load activities")
		}
		recent = []models.Activity{}
	}

	joined, err := h.Activities.GetParticipantActivities()
	if err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		if banner == "" {
			banner = errorMessage(err,
				"Activities are currently unavailable. Please try again later.",
				"Failed to load your activities")
		}
		joined = []models.Activity{}
	}

	// 标记最近列表里哪些已经参加了
	joinedIDs := make(map[string]bool, len(joined))
	for _, a := range joined {
		joinedIDs[a.ID] = true
	}

	data := gin.H{
		"title":     "GetActive - Home",
		"user":      h.Session.User(),
		"recent":    recent,
		"joined":    joined,
		"joinedIDs": joinedIDs,
	}
	if banner != "" {
		data["error"] = banner
	}
	if confirmDelete != "" {
		data["confirmDelete"] = confirmDelete
	}
	c.HTML(http.StatusOK, "home.html", data)
}

// Join 参加活动后重定向回主页，由整页重取刷新“已参加”列表
func (h *HomeHandler) Join(c *gin.Context) {
	id := c.PostForm("activityId")
	if id == "" {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	if err := h.Activities.JoinActivity(id); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		h.render(c, errorMessage(err,
			"The service is currently unavailable. Please try again later.",
			"Failed to join the activity"), "")
		return
	}
	c.Redirect(http.StatusFound, "/home")
}

// Leave 退出活动，同样靠重取刷新列表
func (h *HomeHandler) Leave(c *gin.Context) {
	id := c.PostForm("activityId")
	if id == "" {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	if err := h.Activities.LeaveActivity(id); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		h.render(c, errorMessage(err,
			"The service is currently unavailable. Please try again later.",
			"Failed to leave the activity"), "")
		return
	}
	c.Redirect(http.StatusFound, "/home")
}

// Delete 两段式删除：第一次提交从不带 force；服务端用
// PARTICIPANTS_PRESENT 拒绝时没有发生任何删除，这里重新渲染主页弹出确认，
// 用户确认后表单才带 force=true 再提交一次。
func (h *HomeHandler) Delete(c *gin.Context) {
	id := c.PostForm("activityId")
	if id == "" {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	force := c.PostForm("force") == "true"

	if err := h.Activities.DeleteActivity(id, force); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		if api.IsCode(err, api.CodeParticipantsPresent) {
			h.render(c, "This activity has participants. Delete anyway?", id)
			return
		}
		h.render(c, errorMessage(err,
			"The service is currently unavailable. Please try again later.",
			"Failed to delete the activity"), "")
		return
	}
	c.Redirect(http.StatusFound, "/home")
}

// Participants 按需展开某个活动的参与者，分页 JSON 片段，不做跨展开缓存
func (h *HomeHandler) Participants(c *gin.Context) {
	id := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.PageSize)))

	participants, err := h.Activities.GetActivityParticipants(id, page, size)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeRemote, errorMessage(err,
			"Participants are currently unavailable. Please try again later.",
			"Failed to load participants"))
		return
	}
	util.Success(c, util.Response{"participants": participants})
}
