package activity

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"getactive-client/internal/api"
	"getactive-client/internal/models"
)

// Service 是活动相关远端接口的纯门面：每个方法恰好一次远端调用，
// join/leave/delete 之后的数据刷新由调用方负责（失效-重取约定，
// 这些调用不保证带回更新后的列表）。
type Service struct {
	api *api.Client
}

func NewService(apiClient *api.Client) *Service {
	return &Service{api: apiClient}
}

// ---------- 列表 ----------

type recentResp struct {
	Data struct {
		Content []models.Activity `json:"content"`
	} `json:"data"`
}

// GetRecentActivities 拉取最近活动列表，没有数据时返回空切片而不是 nil
func (s *Service) GetRecentActivities() ([]models.Activity, error) {
	var resp recentResp
	if err := s.api.Get("/activities", &resp); err != nil {
		return nil, err
	}
	if resp.Data.Content == nil {
		return []models.Activity{}, nil
	}
	return resp.Data.Content, nil
}

type participantActivitiesResp struct {
	Data struct {
		Activities []models.Activity `json:"activities"`
	} `json:"data"`
}

// GetParticipantActivities 拉取当前用户已参加的活动（带 role 字段）
func (s *Service) GetParticipantActivities() ([]models.Activity, error) {
	var resp participantActivitiesResp
	if err := s.api.Get("/activity/participants", &resp); err != nil {
		return nil, err
	}
	if resp.Data.Activities == nil {
		return []models.Activity{}, nil
	}
	return resp.Data.Activities, nil
}

// SearchActivities 按名称搜索活动，服务端返回裸数组
func (s *Service) SearchActivities(name string) ([]models.Activity, error) {
	var activities []models.Activity
	if err := s.api.Get("/activity/"+url.PathEscape(name), &activities); err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}

// SortActivities 在客户端对列表排序（name 或 startDateTime），
// 其他取值保持服务端顺序。
func SortActivities(activities []models.Activity, by string) {
	switch by {
	case "name":
		sort.SliceStable(activities, func(i, j int) bool {
			return strings.ToLower(activities[i].Name) < strings.ToLower(activities[j].Name)
		})
	case "startDateTime":
		sort.SliceStable(activities, func(i, j int) bool {
			return activities[i].StartDateTime < activities[j].StartDateTime
		})
	}
}

// ---------- 参加 / 退出 ----------

type membershipReq struct {
	ActivityID string `json:"activityId"`
}

// JoinActivity 参加活动。调用方随后要自己重取 GetParticipantActivities。
func (s *Service) JoinActivity(activityID string) error {
	return s.api.Post("/activity/participants", membershipReq{ActivityID: activityID}, nil)
}

// LeaveActivity 退出活动，目标放在 DELETE 请求体里（平台约定）
func (s *Service) LeaveActivity(activityID string) error {
	return s.api.Delete("/activity/participants", membershipReq{ActivityID: activityID}, nil)
}

// ---------- 创建 / 更新 ----------

// Input holds the activity fields the create/update forms submit.
// 客户端只做视图层已经做过的检查，冲突等问题以服务端为准。
type Input struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
}

func (s *Service) CreateActivity(in Input) error {
	in.ID = ""
	return s.api.Post("/activity", in, nil)
}

func (s *Service) UpdateActivity(in Input) error {
	if in.ID == "" {
		return fmt.Errorf("activity id is required for update")
	}
	return s.api.Put("/activity", in, nil)
}

// ---------- 删除 ----------

type deleteReq struct {
	Force bool `json:"force"`
}

// DeleteActivity 两段式删除：第一次不带 force，活动有参与者时服务端用
// PARTICIPANTS_PRESENT 拒绝且不删除任何东西；调用方确认后用 force=true
// 再调一次。绝不允许第一次调用就带 force。
func (s *Service) DeleteActivity(activityID string, force bool) error {
	return s.api.Delete("/activity/"+url.PathEscape(activityID), deleteReq{Force: force}, nil)
}

// ---------- 参与者 ----------

type participantsResp struct {
	Data []models.Participant `json:"data"`
}

// GetActivityParticipants 分页拉取某个活动的参与者，展开时按需请求，
// 收起后不做跨页缓存。
func (s *Service) GetActivityParticipants(activityID string, page, size int) ([]models.Participant, error) {
	path := fmt.Sprintf("/activities/%s/participants?page=%d&size=%d",
		url.PathEscape(activityID), page, size)
	var resp participantsResp
	if err := s.api.Get(path, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []models.Participant{}, nil
	}
	return resp.Data, nil
}
