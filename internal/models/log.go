package models

import "time"

// AuditLog records user-initiated operations locally for auditing.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:64;index"`
	Method    string `gorm:"size:16"`
	Path      string `gorm:"size:255"`  // 明文路径（未配置加密密钥时）
	PathEnc   string `gorm:"size:1024"` // 加密后的路径
	Action    string `gorm:"size:1024"` // 明文动作描述
	ActionEnc string `gorm:"size:2048"` // 加密后的动作描述
	CreatedAt time.Time
}
