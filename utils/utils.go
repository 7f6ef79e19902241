package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"prcontacts-backend/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTSecret = "change-this-contacts-jwt-secret-in-production"

var configPaths = []string{".", "./configs", "../", "../../"}

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	return LoadFrom(configPaths...)
}

// LoadFrom loads the configuration searching config.json only in the given directories
func LoadFrom(paths ...string) (*models.Config, error) {
	// .env is optional; real environment variables win over it
	for _, dir := range paths {
		envFile := strings.TrimSuffix(dir, "/") + "/.env"
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			break
		}
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	for _, dir := range paths {
		v.AddConfigPath(dir)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
		flattenNestedConfig(v)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Durations may arrive as strings such as "24h"
	if raw := v.GetString("jwt_expires_in"); raw != "" {
		if expires, err := time.ParseDuration(raw); err == nil {
			config.JWTExpiresIn = expires
		} else if config.JWTExpiresIn == 0 {
			return nil, fmt.Errorf("invalid JWT expires_in format: %w", err)
		}
	}

	// Comma separated lists from the environment
	config.CORSOrigins = splitList(config.CORSOrigins)
	config.DefaultRoles = splitList(config.DefaultRoles)
	config.Tables = splitList(config.Tables)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "PR Contacts Backend")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "3000")

	// JWT defaults
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_expires_in", "24h")

	// Access control
	v.SetDefault("require_editor_for_writes", false)
	v.SetDefault("default_roles", []string{string(models.UserRoleUser)})
	v.SetDefault("auth_rate_per_minute", 30)
	v.SetDefault("auth_rate_burst", 10)

	// Storage
	v.SetDefault("storage_driver", models.StorageDriverDynamoDB)
	v.SetDefault("sqlite_path", "contacts.db")

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"*"})

	// Listing
	v.SetDefault("default_page_size", 10)

	// Worker
	v.SetDefault("token_cleanup_schedule", "@every 15m")
	v.SetDefault("auto_create_tables", true)

	// Base Path default
	v.SetDefault("basePath", "/api")

	// tables the worker creates when missing
	v.SetDefault("tables", []string{"contacts", "users"})
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.JWTSecret == defaultJWTSecret && c.AppEnv == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	switch c.StorageDriver {
	case models.StorageDriverDynamoDB, models.StorageDriverSQLite:
	default:
		return fmt.Errorf("unsupported storage_driver %q", c.StorageDriver)
	}

	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("default_page_size must be positive, got %d", c.DefaultPageSize)
	}

	if c.AuthRatePerMinute < 0 || c.AuthRateBurst < 0 {
		return fmt.Errorf("auth rate limit settings must not be negative")
	}

	for _, r := range c.DefaultRoles {
		if !models.UserRole(r).IsValid() {
			return fmt.Errorf("unknown role %q in default_roles", r)
		}
	}

	// In production, we should have AWS credentials set
	if c.AppEnv == "production" && c.StorageDriver == models.StorageDriverDynamoDB && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	strs := map[string]string{
		"app.name":                  "app_name",
		"app.version":               "app_version",
		"app.env":                   "app_env",
		"app.host":                  "app_host",
		"app.port":                  "app_port",
		"jwt.secret":                "jwt_secret",
		"jwt.expires_in":            "jwt_expires_in",
		"aws.region":                "aws_region",
		"aws.access_key_id":         "aws_access_key_id",
		"aws.secret_access_key":     "aws_secret_access_key",
		"aws.dynamodb_endpoint":     "dynamodb_endpoint",
		"aws.dynamodb_table_prefix": "dynamodb_table_prefix",
		"storage.driver":            "storage_driver",
		"storage.sqlite_path":       "sqlite_path",
		"logging.level":             "log_level",
		"logging.format":            "log_format",
		"worker.token_cleanup":      "token_cleanup_schedule",
	}
	for nested, flat := range strs {
		// an explicit environment variable beats the file
		if v.IsSet(nested) && os.Getenv(strings.ToUpper(flat)) == "" {
			v.Set(flat, v.GetString(nested))
		}
	}

	if v.IsSet("cors.origins") && os.Getenv("CORS_ORIGINS") == "" {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}
	if v.IsSet("auth.require_editor_for_writes") && os.Getenv("REQUIRE_EDITOR_FOR_WRITES") == "" {
		v.Set("require_editor_for_writes", v.GetBool("auth.require_editor_for_writes"))
	}
	if v.IsSet("auth.default_roles") && os.Getenv("DEFAULT_ROLES") == "" {
		v.Set("default_roles", v.GetStringSlice("auth.default_roles"))
	}
	if v.IsSet("auth.rate_per_minute") && os.Getenv("AUTH_RATE_PER_MINUTE") == "" {
		v.Set("auth_rate_per_minute", v.GetInt("auth.rate_per_minute"))
	}
	if v.IsSet("auth.rate_burst") && os.Getenv("AUTH_RATE_BURST") == "" {
		v.Set("auth_rate_burst", v.GetInt("auth.rate_burst"))
	}
	if v.IsSet("worker.auto_create_tables") && os.Getenv("AUTO_CREATE_TABLES") == "" {
		v.Set("auto_create_tables", v.GetBool("worker.auto_create_tables"))
	}
	if v.IsSet("pagination.default_limit") && os.Getenv("DEFAULT_PAGE_SIZE") == "" {
		v.Set("default_page_size", v.GetInt("pagination.default_limit"))
	}
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ") // 4 spaces indent
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// HashPassword hashes a plain text password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a hashed password with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
