package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"getactive-client/internal/activity"
	"getactive-client/internal/models"
	"getactive-client/internal/session"
	"getactive-client/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// DiscoveryHandler 负责活动发现页：按名称搜索、客户端排序、xlsx 导出
type DiscoveryHandler struct {
	Session    *session.Context
	Activities *activity.Service
}

func NewDiscoveryHandler(sess *session.Context, activities *activity.Service) *DiscoveryHandler {
	return &DiscoveryHandler{Session: sess, Activities: activities}
}

// fetch 有搜索词走名称搜索，否则取最近列表，排序在客户端做
func (h *DiscoveryHandler) fetch(search, sortBy string) ([]models.Activity, error) {
	var (
		activities []models.Activity
		err        error
	)
	if search != "" {
		activities, err = h.Activities.SearchActivities(search)
	} else {
		activities, err = h.Activities.GetRecentActivities()
	}
	if err != nil {
		return nil, err
	}
	activity.SortActivities(activities, sortBy)
	return activities, nil
}

// Discover renders the discovery page with search and sort controls.
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	sortBy := c.Query("sort")

	data := gin.H{
		"title":  "GetActive - Discover",
		"user":   h.Session.User(),
		"search": search,
		"sort":   sortBy,
	}

	activities, err := h.fetch(search, sortBy)
	if err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		data["error"] = errorMessage(err,
			"Activities are currently unavailable. Please try again later.",
			"Failed to load activities")
		activities = []models.Activity{}
	}
	data["activities"] = activities

	c.HTML(http.StatusOK, "discover.html", data)
}

// ExportXLSX 把当前筛选下的活动列表导出为 Excel
func (h *DiscoveryHandler) ExportXLSX(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	sortBy := c.Query("sort")

	activities, err := h.fetch(search, sortBy)
	if err != nil {
		if redirectOnAuthExpiry(c, err) {
			return
		}
		util.Error(c, http.StatusBadGateway, util.CodeRemote, errorMessage(err,
			"Activities are currently unavailable. Please try again later.",
			"Failed to load activities"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Activities"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Description", "Location", "Start", "End"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row, a := range activities {
		values := []string{a.Name, a.Description, a.Location, a.StartDateTime, a.EndDateTime}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"activities_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		// 响应头已经写出，只能记录
		_ = c.Error(err)
	}
}
