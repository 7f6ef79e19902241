package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// JWT
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// Access control
	RequireEditorForWrites bool     `mapstructure:"require_editor_for_writes"`
	DefaultRoles           []string `mapstructure:"default_roles"`

	// Per client limit on login and register, 0 disables it
	AuthRatePerMinute int `mapstructure:"auth_rate_per_minute"`
	AuthRateBurst     int `mapstructure:"auth_rate_burst"`

	// Storage
	StorageDriver string `mapstructure:"storage_driver"` // dynamodb or sqlite
	SQLitePath    string `mapstructure:"sqlite_path"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Listing
	DefaultPageSize int `mapstructure:"default_page_size"`

	// Worker
	TokenCleanupSchedule string `mapstructure:"token_cleanup_schedule"`
	AutoCreateTables     bool   `mapstructure:"auto_create_tables"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	Tables []string `mapstructure:"tables"`
}

const (
	StorageDriverDynamoDB = "dynamodb"
	StorageDriverSQLite   = "sqlite"
)

// TableName returns the prefixed DynamoDB table name for a base name
func (c *Config) TableName(base string) string {
	if c.DynamoDBTablePrefix == "" {
		return base
	}
	return c.DynamoDBTablePrefix + "_" + base
}
