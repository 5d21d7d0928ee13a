package models

// Activity 表示一条活动记录（服务端返回，客户端不做关系建模）
// role 只在“已参加”列表里出现，ADMIN 才能删除活动，普通参与者只能退出。
type Activity struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Role          string `json:"role,omitempty"`
}

// IsAdmin reports whether the viewer administers this activity.
func (a Activity) IsAdmin() bool {
	return a.Role == "ADMIN"
}

// Participant 表示某个活动的一名参与者，按需分页拉取，不做跨页缓存
type Participant struct {
	Username string `json:"username"`
	RoleType string `json:"roleType"`
}
