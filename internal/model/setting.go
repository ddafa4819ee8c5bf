package model

// SettingItem is a single granted item within a settings entry. For
// authority catalog entries Item is the permission string handed to tokens
// (e.g. "장비관리자") and Description documents it for the management UI.
type SettingItem struct {
	Item        string `json:"item"`
	Description string `json:"description,omitempty"`
}

// Setting is a key-value catalog entry in the `settings` table, keyed by
// the (CategoryType, Category) pair. The auth engine reads entries with
// CategoryType "authorityList" to expand a user's responsibility tags into
// authority strings.
type Setting struct {
	CategoryType string        `json:"categoryType"` // settings.category_type (part of primary key)
	Category     string        `json:"category"`     // settings.category (part of primary key)
	Items        []SettingItem `json:"items"`        // settings.items (JSON column)
}

// AuthorityCategoryType is the CategoryType under which authority grants
// are stored.
const AuthorityCategoryType = "authorityList"
