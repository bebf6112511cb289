package model

// Setting — пара ключ/значение в плоском пространстве имён
// (параметры парольной политики, URL и токен внешней интеграции).
type Setting struct {
	Key   string `gorm:"primaryKey;column:key" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// Известные ключи настроек.
const (
	SettingPasswordMinLength      = "password_min_length"
	SettingPasswordRequireNumber  = "password_require_number"
	SettingPasswordRequireSpecial = "password_require_special"
	SettingRecipeManagerURL       = "recipe_manager_url"
	SettingRecipeManagerToken     = "recipe_manager_token"
)
