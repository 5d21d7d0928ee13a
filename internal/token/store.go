package token

import (
	"encoding/base64"
	"errors"
	"time"

	"getactive-client/internal/models"
	"getactive-client/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// 固定的本地存储 key：一条 token 字符串 + 一份会话快照 JSON
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// Store persists client state (bearer token, session snapshot) in the
// local database. Values are AES-encrypted at rest when an encryption
// key is configured.
type Store struct {
	db         *gorm.DB
	encryptKey string
}

func NewStore(db *gorm.DB, encryptKey string) *Store {
	return &Store{db: db, encryptKey: encryptKey}
}

// SetToken 无条件写入，覆盖同 key 的旧值
func (s *Store) SetToken(key, value string) error {
	stored := value
	if s.encryptKey != "" {
		b, err := util.EncryptAES(s.encryptKey, []byte(value))
		if err != nil {
			return err
		}
		stored = base64.StdEncoding.EncodeToString(b)
	}
	rec := models.StoredToken{Key: key, Value: stored}
	return s.db.Save(&rec).Error
}

// GetToken 返回存储的值，不存在时返回空串
func (s *Store) GetToken(key string) string {
	var rec models.StoredToken
	if err := s.db.First(&rec, "key = ?", key).Error; err != nil {
		return ""
	}
	if s.encryptKey == "" {
		return rec.Value
	}
	// 解密失败时按原值返回（可能是未加密的旧数据）
	b, err := base64.StdEncoding.DecodeString(rec.Value)
	if err != nil {
		return rec.Value
	}
	plain, err := util.DecryptAES(s.encryptKey, b)
	if err != nil {
		return rec.Value
	}
	return string(plain)
}

// RemoveToken 删除存储的值，不存在时为 no-op
func (s *Store) RemoveToken(key string) error {
	err := s.db.Delete(&models.StoredToken{}, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// ParseToken 只解码 JWT 的 payload 段，不校验签名（信任完全交给服务端）。
// 段数不对、base64 损坏、payload 不是 JSON 时一律返回 nil，不会 panic。
func ParseToken(tokenStr string) jwt.MapClaims {
	if tokenStr == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	return claims
}

// IsTokenExpired 判断 token 是否过期。拿不准的一律当作已过期：
// 空 token、解析失败、缺少 exp、exp 不晚于当前时间都返回 true。
func IsTokenExpired(tokenStr string) bool {
	claims := ParseToken(tokenStr)
	if claims == nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !exp.Time.After(time.Now())
}
