package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prcontacts-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// UtilsTestSuite defines a test suite for utils functions
type UtilsTestSuite struct {
	suite.Suite
	originalEnv map[string]string
	dir         string
}

var configEnvVars = []string{
	"APP_NAME", "APP_VERSION", "APP_ENV", "APP_HOST", "APP_PORT",
	"JWT_SECRET", "JWT_EXPIRES_IN",
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"DYNAMODB_ENDPOINT", "DYNAMODB_TABLE_PREFIX",
	"STORAGE_DRIVER", "SQLITE_PATH",
	"LOG_LEVEL", "LOG_FORMAT",
	"CORS_ORIGINS", "DEFAULT_PAGE_SIZE", "DEFAULT_ROLES", "REQUIRE_EDITOR_FOR_WRITES",
	"AUTH_RATE_PER_MINUTE", "AUTH_RATE_BURST",
	"TOKEN_CLEANUP_SCHEDULE", "AUTO_CREATE_TABLES", "TABLES",
	"BASEPATH",
}

// SetupTest runs before each test
func (suite *UtilsTestSuite) SetupTest() {
	suite.originalEnv = make(map[string]string)
	for _, envVar := range configEnvVars {
		suite.originalEnv[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}
	suite.dir = suite.T().TempDir()
}

// TearDownTest runs after each test
func (suite *UtilsTestSuite) TearDownTest() {
	for envVar, value := range suite.originalEnv {
		if value != "" {
			os.Setenv(envVar, value)
		} else {
			os.Unsetenv(envVar)
		}
	}
}

func (suite *UtilsTestSuite) writeFile(name, content string) {
	err := os.WriteFile(filepath.Join(suite.dir, name), []byte(content), 0o600)
	require.NoError(suite.T(), err)
}

func (suite *UtilsTestSuite) TestLoadDefaults() {
	config, err := LoadFrom(suite.dir)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "PR Contacts Backend", config.AppName)
	assert.Equal(suite.T(), "development", config.AppEnv)
	assert.Equal(suite.T(), "3000", config.AppPort)
	assert.Equal(suite.T(), "/api", config.BasePath)
	assert.Equal(suite.T(), 24*time.Hour, config.JWTExpiresIn)
	assert.Equal(suite.T(), models.StorageDriverDynamoDB, config.StorageDriver)
	assert.Equal(suite.T(), 10, config.DefaultPageSize)
	assert.Equal(suite.T(), []string{"user"}, config.DefaultRoles)
	assert.Equal(suite.T(), []string{"*"}, config.CORSOrigins)
	assert.Equal(suite.T(), []string{"contacts", "users"}, config.Tables)
	assert.False(suite.T(), config.RequireEditorForWrites)
	assert.Equal(suite.T(), 30, config.AuthRatePerMinute)
	assert.Equal(suite.T(), 10, config.AuthRateBurst)
}

func (suite *UtilsTestSuite) TestLoadWithEnvironmentVariables() {
	os.Setenv("APP_NAME", "Test App")
	os.Setenv("APP_ENV", "production")
	os.Setenv("JWT_SECRET", "production-secret")
	os.Setenv("STORAGE_DRIVER", "sqlite")
	os.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	config, err := LoadFrom(suite.dir)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Test App", config.AppName)
	assert.Equal(suite.T(), "production", config.AppEnv)
	assert.Equal(suite.T(), "production-secret", config.JWTSecret)
	assert.Equal(suite.T(), models.StorageDriverSQLite, config.StorageDriver)
	assert.Equal(suite.T(), []string{"http://a.example", "http://b.example"}, config.CORSOrigins)
}

func (suite *UtilsTestSuite) TestLoadNestedConfigFile() {
	suite.writeFile("config.json", `{
		"app": {"name": "Contacts", "port": "9090"},
		"jwt": {"secret": "file-secret", "expires_in": "2h"},
		"storage": {"driver": "sqlite", "sqlite_path": "/tmp/c.db"},
		"logging": {"level": "debug", "format": "text"},
		"auth": {"require_editor_for_writes": true, "default_roles": ["editor"], "rate_per_minute": 5, "rate_burst": 2},
		"pagination": {"default_limit": 25}
	}`)

	config, err := LoadFrom(suite.dir)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Contacts", config.AppName)
	assert.Equal(suite.T(), "9090", config.AppPort)
	assert.Equal(suite.T(), "file-secret", config.JWTSecret)
	assert.Equal(suite.T(), 2*time.Hour, config.JWTExpiresIn)
	assert.Equal(suite.T(), "/tmp/c.db", config.SQLitePath)
	assert.Equal(suite.T(), "debug", config.LogLevel)
	assert.Equal(suite.T(), "text", config.LogFormat)
	assert.True(suite.T(), config.RequireEditorForWrites)
	assert.Equal(suite.T(), []string{"editor"}, config.DefaultRoles)
	assert.Equal(suite.T(), 25, config.DefaultPageSize)
	assert.Equal(suite.T(), 5, config.AuthRatePerMinute)
	assert.Equal(suite.T(), 2, config.AuthRateBurst)
}

func (suite *UtilsTestSuite) TestEnvironmentBeatsConfigFile() {
	suite.writeFile("config.json", `{"app": {"name": "From File"}}`)
	os.Setenv("APP_NAME", "From Env")

	config, err := LoadFrom(suite.dir)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "From Env", config.AppName)
}

func (suite *UtilsTestSuite) TestLoadDotEnv() {
	suite.writeFile(".env", "APP_NAME=Dotenv App\nDEFAULT_PAGE_SIZE=5\n")
	defer os.Unsetenv("APP_NAME")
	defer os.Unsetenv("DEFAULT_PAGE_SIZE")

	config, err := LoadFrom(suite.dir)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Dotenv App", config.AppName)
	assert.Equal(suite.T(), 5, config.DefaultPageSize)
}

func (suite *UtilsTestSuite) TestLoadWithInvalidJWTExpiration() {
	os.Setenv("JWT_EXPIRES_IN", "invalid-duration")

	config, err := LoadFrom(suite.dir)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
	assert.True(suite.T(), strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "failed"))
}

func (suite *UtilsTestSuite) TestLoadRejectsNegativeRateLimit() {
	os.Setenv("AUTH_RATE_PER_MINUTE", "-1")

	config, err := LoadFrom(suite.dir)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
}

func (suite *UtilsTestSuite) TestLoadWithProductionValidation() {
	os.Setenv("APP_ENV", "production")

	config, err := LoadFrom(suite.dir)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
	assert.Contains(suite.T(), err.Error(), "JWT_SECRET must be set in production environment")
}

func (suite *UtilsTestSuite) TestLoadRejectsUnknownDriver() {
	os.Setenv("STORAGE_DRIVER", "mongodb")

	_, err := LoadFrom(suite.dir)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "storage_driver")
}

func (suite *UtilsTestSuite) TestValidate() {
	base := func() *models.Config {
		return &models.Config{
			AppEnv:          "development",
			JWTSecret:       defaultJWTSecret,
			StorageDriver:   models.StorageDriverSQLite,
			DefaultPageSize: 10,
		}
	}

	assert.NoError(suite.T(), validate(base()))

	c := base()
	c.AppEnv = "production"
	assert.Error(suite.T(), validate(c))

	c.JWTSecret = "production-secret"
	assert.NoError(suite.T(), validate(c))

	c = base()
	c.DefaultPageSize = 0
	assert.Error(suite.T(), validate(c))

	c = base()
	c.DefaultRoles = []string{"superuser"}
	assert.Error(suite.T(), validate(c))
}

func (suite *UtilsTestSuite) TestPrintPrettyJSON() {
	data := map[string]interface{}{
		"name":  "test",
		"value": 123,
	}

	result := PrintPrettyJSON(data)
	var parsed map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal([]byte(result), &parsed))
	assert.Equal(suite.T(), "test", parsed["name"])
	assert.Equal(suite.T(), float64(123), parsed["value"])

	assert.Equal(suite.T(), "null", PrintPrettyJSON(nil))
	assert.Empty(suite.T(), PrintPrettyJSON(make(chan int)))
}

func (suite *UtilsTestSuite) TestGenerateUUID() {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		_, err := uuid.Parse(id)
		assert.NoError(suite.T(), err)
		assert.False(suite.T(), seen[id], "Generated duplicate UUID: %s", id)
		seen[id] = true
	}
}

func (suite *UtilsTestSuite) TestCheckPassword() {
	password := "testpassword123"

	hash, err := HashPassword(password)
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), password, hash)

	assert.True(suite.T(), CheckPassword(hash, password))
	assert.False(suite.T(), CheckPassword(hash, "wrongpassword"))
	assert.False(suite.T(), CheckPassword(hash, ""))
	assert.False(suite.T(), CheckPassword("not-a-bcrypt-hash", password))

	directHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), CheckPassword(string(directHash), password))
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c ", ""}))
	assert.Nil(t, splitList(nil))
}
