package handler

import (
	"errors"
	"net/http"
	"strings"

	"getactive-client/internal/activity"
	"getactive-client/internal/api"
	"getactive-client/internal/session"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
)

// CreateHandler 负责创建/更新活动表单
type CreateHandler struct {
	Session    *session.Context
	Activities *activity.Service
}

func NewCreateHandler(sess *session.Context, activities *activity.Service) *CreateHandler {
	return &CreateHandler{Session: sess, Activities: activities}
}

// CreatePage renders the create-activity form.
func (h *CreateHandler) CreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "create.html", gin.H{
		"title": "GetActive - Create Activity",
		"user":  h.Session.User(),
	})
}

// Create 处理提交。客户端只做表单级检查，命名冲突等以服务端为准。
func (h *CreateHandler) Create(c *gin.Context) {
	in := activity.Input{
		Name:          strings.TrimSpace(c.PostForm("name")),
		Description:   strings.TrimSpace(c.PostForm("description")),
		Location:      strings.TrimSpace(c.PostForm("location")),
		StartDateTime: c.PostForm("startDateTime"),
		EndDateTime:   c.PostForm("endDateTime"),
	}

	render := func(status int, msg string) {
		c.HTML(status, "create.html", gin.H{
			"title": "GetActive - Create Activity",
			"user":  h.Session.User(),
			"error": msg,
			"form":  in,
		})
	}

	if err := util.ValidateActivityName(in.Name); err != nil {
		render(http.StatusBadRequest, err.Error())
		return
	}
	if in.Location == "" {
		render(http.StatusBadRequest, "location is empty")
		return
	}
	if err := util.ValidateTimeRange(in.StartDateTime, in.EndDateTime); err != nil {
		render(http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Activities.CreateActivity(in); err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) && len(apiErr.ValidationErrors) > 0 {
			// 展示第一组字段错误就够了，表单本身很小
			for field, msgs := range apiErr.ValidationErrors {
				if len(msgs) > 0 {
					render(http.StatusBadRequest, field+": "+msgs[0])
					return
				}
			}
		}
		render(http.StatusBadGateway, errorMessage(err,
			"Activity creation is currently unavailable. Please try again later.",
			"Failed to create the activity"))
		return
	}

	c.Redirect(http.StatusFound, "/home")
}
