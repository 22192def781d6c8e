package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Firebase FirebaseConfig
	Mail     MailConfig
	Gate     GateConfig
	Features FeatureConfig
	Event    EventConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type SheetsConfig struct {
	SpreadsheetID     string
	WishlistWorksheet string
	LogWorksheet      string // empty disables the contribution log

	ServiceAccountEmail      string
	ServiceAccountPrivateKey string // PEM; literal "\n" sequences are unescaped
	CredentialsPath          string
}

type FirebaseConfig struct {
	ProjectID         string
	CredentialsPath   string
	FirestoreDatabase string
	Collection        string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BCC      string
}

type GateConfig struct {
	Password   string        // empty disables the gate
	SigningKey string        // HMAC key for the gate cookie; generated when empty
	MaxAge     time.Duration // lifetime of a granted cookie
}

type FeatureConfig struct {
	RegistrationEnabled bool
}

type EventConfig struct {
	Date     string // YYYY-MM-DD of the main day
	Location string
	Couple   string
	SiteURL  string

	BankHolder    string
	BankIBAN      string
	BankReference string
}

// Load returns application configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "production"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:            getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
			WishlistWorksheet:        getEnv("GOOGLE_SHEETS_WISHLIST_WORKSHEET_NAME", "Wishlist"),
			LogWorksheet:             getEnv("GOOGLE_SHEETS_WISHLIST_LOG_WORKSHEET_NAME", ""),
			ServiceAccountEmail:      getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
			ServiceAccountPrivateKey: strings.ReplaceAll(getEnv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", ""), `\n`, "\n"),
			CredentialsPath:          getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath:   getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			FirestoreDatabase: getEnv("FIRESTORE_DATABASE", "(default)"),
			Collection:        getEnv("FIRESTORE_COLLECTION", "registrations"),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			BCC:      getEnv("SMTP_BCC", ""),
		},
		Gate: GateConfig{
			Password:   getEnv("SITE_PASSWORD", ""),
			SigningKey: getEnv("GATE_SIGNING_KEY", ""),
			MaxAge:     time.Duration(getEnvInt("GATE_MAX_AGE_DAYS", 30)) * 24 * time.Hour,
		},
		Features: FeatureConfig{
			RegistrationEnabled: getEnvFlag("REGISTRATION_ENABLED", true),
		},
		Event: EventConfig{
			Date:          getEnv("EVENT_DATE", ""),
			Location:      getEnv("EVENT_LOCATION", ""),
			Couple:        getEnv("EVENT_COUPLE", ""),
			SiteURL:       getEnv("SITE_URL", ""),
			BankHolder:    getEnv("BANK_HOLDER", ""),
			BankIBAN:      getEnv("BANK_IBAN", ""),
			BankReference: getEnv("BANK_REFERENCE", ""),
		},
	}
}

// IsDevelopment reports whether ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFlag treats false, 0, off and no (any case) as disabled and every
// other non-empty value as enabled.
func getEnvFlag(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "false", "0", "off", "no":
		return false
	}
	return true
}
