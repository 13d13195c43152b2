package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Admin    AdminConfig
	HubSpot  HubSpotConfig
	Slack    SlackConfig
	Referral ReferralConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	BaseURL      string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AdminConfig struct {
	Password string
}

// HubSpotConfig holds the program-wide defaults; campaigns may override
// the portal id and form guids per campaign.
type HubSpotConfig struct {
	PortalID       string
	FormGUID       string
	FriendFormGUID string
	AccessToken    string
}

type SlackConfig struct {
	WebhookURL string
}

type ReferralConfig struct {
	BookingURL string
	// AllowStatusJumps disables the forward-only transition graph and lets
	// admins mark any status directly.
	AllowStatusJumps bool
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	allowJumps, _ := strconv.ParseBool(getEnv("REFERRAL_ALLOW_STATUS_JUMPS", "false"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "referrals"),
			Password: getEnv("DB_PASSWORD", "referrals"),
			Name:     getEnv("DB_NAME", "referrals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Admin: AdminConfig{
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		HubSpot: HubSpotConfig{
			PortalID:       getEnv("HUBSPOT_PORTAL_ID", ""),
			FormGUID:       getEnv("HUBSPOT_FORM_GUID", ""),
			FriendFormGUID: getEnv("HUBSPOT_FRIEND_FORM_GUID", ""),
			AccessToken:    getEnv("HUBSPOT_ACCESS_TOKEN", ""),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},
		Referral: ReferralConfig{
			BookingURL:       getEnv("BOOKING_URL", "https://myedspace.com/pages/myedspace-learn-with-eddie"),
			AllowStatusJumps: allowJumps,
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
