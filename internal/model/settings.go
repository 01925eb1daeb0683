package model

// Settings holds the preferences of the Settings page. Each field lives in
// its own plain-string storage slot.
type Settings struct {
	Theme                  string          `json:"theme" validate:"oneof=light dark system"`
	Lang                   string          `json:"lang" validate:"oneof=fr en"`
	NotificationsEnabled   bool            `json:"notificationsEnabled"`
	NotificationsFrequency NotifyFrequency `json:"notificationsFrequency" validate:"oneof=daily weekly alerts_only none"`
}

// DefaultSettings are returned for slots that were never written.
func DefaultSettings() Settings {
	return Settings{
		Theme:                  "system",
		Lang:                   "fr",
		NotificationsEnabled:   false,
		NotificationsFrequency: NotifyWeekly,
	}
}
