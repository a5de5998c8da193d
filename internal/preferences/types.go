package preferences

// Setting keys in the settings table.
const (
	KeyAPIKey          = "debrid_api_key"
	KeyAutoRefresh     = "auto_refresh"
	KeyAutoRefreshCron = "auto_refresh_cron"
	KeySecretSalt      = "secret_salt"
)

// Preferences is the user-facing settings view. The credential itself
// is never returned, only whether one is stored.
type Preferences struct {
	APIKeySet       bool   `json:"api_key_set"`
	AutoRefresh     bool   `json:"auto_refresh"`
	AutoRefreshCron string `json:"auto_refresh_cron"`
}

// UpdateInput is the settings update request. Nil fields are left
// unchanged; an empty APIKey clears the stored credential.
type UpdateInput struct {
	APIKey          *string `json:"api_key"`
	AutoRefresh     *bool   `json:"auto_refresh"`
	AutoRefreshCron *string `json:"auto_refresh_cron"`
}
