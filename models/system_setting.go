package models

import "gorm.io/gorm"

// SystemSetting is a key-value configuration row seeded at bootstrap.
type SystemSetting struct {
	Key   string `gorm:"primaryKey;column:setting_key" json:"key"`
	Value string `gorm:"column:setting_value" json:"value"`
}

func (SystemSetting) TableName() string { return "system_settings" }

// GetSetting returns the stored value for key, or "" when absent.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s SystemSetting
	if err := db.First(&s, "setting_key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SetSetting upserts the value for key.
func SetSetting(db *gorm.DB, key, value string) error {
	s := SystemSetting{Key: key, Value: value}
	return db.Save(&s).Error
}
