package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

type Config struct {
	APIToken  string
	BaseURL   string
	ChannelID string

	FetchAll  bool
	StartDate string
	EndDate   string

	VerifySSL         bool
	Timezone          string
	OutputDir         string
	PerPage           int
	RequestsPerSecond float64
	Debug             bool

	GoogleSheetsCredentials string
	SpreadsheetID           string
}

// Load reads configuration from the environment, with a .env file as
// fallback. BASE_URL must point at the API root including /api/v4.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		APIToken:                os.Getenv("API_TOKEN"),
		BaseURL:                 os.Getenv("BASE_URL"),
		ChannelID:               os.Getenv("CHANNEL_ID"),
		FetchAll:                getEnvBool("FETCH_ALL", false),
		StartDate:               os.Getenv("START_DATE"),
		EndDate:                 os.Getenv("END_DATE"),
		VerifySSL:               getEnvBool("VERIFY_SSL", true),
		Timezone:                getEnvOrDefault("TIMEZONE", "UTC"),
		OutputDir:               getEnvOrDefault("OUTPUT_DIR", "output"),
		PerPage:                 getEnvInt("PER_PAGE", 100),
		RequestsPerSecond:       getEnvFloat("REQUESTS_PER_SECOND", 10),
		Debug:                   getEnvBool("DEBUG", false),
		GoogleSheetsCredentials: os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
		SpreadsheetID:           os.Getenv("SPREADSHEET_ID"),
	}

	if cfg.APIToken == "" {
		cfg.APIToken = promptForToken()
	}

	var missing []string
	if cfg.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if cfg.ChannelID == "" {
		missing = append(missing, "CHANNEL_ID")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if (cfg.GoogleSheetsCredentials == "") != (cfg.SpreadsheetID == "") {
		return nil, fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS and SPREADSHEET_ID must be set together")
	}

	return cfg, nil
}

// SheetsEnabled reports whether the optional Google Sheets sink is
// configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSheetsCredentials != "" && c.SpreadsheetID != ""
}

// promptForToken asks for the API token interactively. Returns "" when
// stdin is not a terminal.
func promptForToken() string {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return ""
	}
	fmt.Print("Enter Mattermost API token: ")
	token, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Printf("Warning: Could not read token from terminal: %v", err)
		return ""
	}
	return strings.TrimSpace(string(token))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		log.Printf("Warning: Invalid value %q for %s, using default %v", value, key, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: Invalid value %q for %s, using default %d", value, key, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: Invalid value %q for %s, using default %g", value, key, defaultValue)
		return defaultValue
	}
	return parsed
}
