package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
	buffer *bytes.Buffer
}

func (suite *LoggerTestSuite) SetupTest() {
	suite.buffer = &bytes.Buffer{}
}

func (suite *LoggerTestSuite) lines() []string {
	out := strings.TrimSpace(suite.buffer.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func (suite *LoggerTestSuite) TestJSONFormat() {
	log := NewLoggerWithOutput(suite.buffer, "info", "json")
	log.Infof("contact %s created", "abc")

	lines := suite.lines()
	require.Len(suite.T(), lines, 1)

	var entry map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(suite.T(), "info", entry["level"])
	assert.Equal(suite.T(), "contact abc created", entry["msg"])
	assert.NotEmpty(suite.T(), entry["time"])
}

func (suite *LoggerTestSuite) TestTextFormat() {
	log := NewLoggerWithOutput(suite.buffer, "info", "text")
	log.Warn("slow scan")

	out := suite.buffer.String()
	assert.Contains(suite.T(), out, "level=warning")
	assert.Contains(suite.T(), out, "slow scan")
}

func (suite *LoggerTestSuite) TestLevelFiltering() {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 4},
		{"info", 3},
		{"warn", 2},
		{"error", 1},
		{"bogus", 3},
		{"trace", 3},
	}

	for _, tt := range tests {
		suite.Run(tt.level, func() {
			suite.buffer.Reset()
			log := NewLoggerWithOutput(suite.buffer, tt.level, "json")
			log.Debug("d")
			log.Info("i")
			log.Warnf("w %d", 1)
			log.Errorf("e %d", 2)
			assert.Len(suite.T(), suite.lines(), tt.want)
		})
	}
}

func (suite *LoggerTestSuite) TestWithField() {
	log := NewLoggerWithOutput(suite.buffer, "info", "json").WithField("request_id", "r-1")
	log.Error("boom")

	var entry map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(suite.buffer.Bytes(), &entry))
	assert.Equal(suite.T(), "r-1", entry["request_id"])
	assert.Equal(suite.T(), "error", entry["level"])
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Info("ignored")
		log.Errorf("ignored %d", 1)
	})
}

func TestNewLoggerImplementsInterface(t *testing.T) {
	var _ Logger = NewLogger("info", "json")
}
