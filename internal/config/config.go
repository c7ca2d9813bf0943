package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process configuration. It is built once in main and
// passed explicitly to the components that need it.
type Config struct {
	AppPort         string
	BaseURL         string
	SiteName        string
	SiteShortName   string
	SiteDescription string
	DatabaseURL     string // postgres DSN; empty means SQLite
	SQLitePath      string
	RabbitMQURL     string // empty disables event publishing
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("SITE_NAME", "Birthday Wish")
	viper.SetDefault("SITE_SHORT_NAME", "BdayWish")
	viper.SetDefault("SITE_DESCRIPTION", "Create and share personalized birthday wishes instantly with beautiful messages.")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SQLITE_PATH", "wishes.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	return Config{
		AppPort:         viper.GetString("APP_PORT"),
		BaseURL:         strings.TrimRight(viper.GetString("BASE_URL"), "/"),
		SiteName:        viper.GetString("SITE_NAME"),
		SiteShortName:   viper.GetString("SITE_SHORT_NAME"),
		SiteDescription: viper.GetString("SITE_DESCRIPTION"),
		DatabaseURL:     viper.GetString("DATABASE_URL"),
		SQLitePath:      viper.GetString("SQLITE_PATH"),
		RabbitMQURL:     viper.GetString("RABBITMQ_URL"),
	}
}

// WishURL returns the canonical retrieval link for a slug.
func (c Config) WishURL(slug string) string {
	return c.BaseURL + "/wish/" + slug
}
