package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer

	require.NoError(t, setup(logger, &buf, "info", "json"))
	logger.WithField("story_id", "a1").Info("hello")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "a1", entry["story_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetup_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, setup(logrus.New(), &buf, "loud", "text"))
	assert.Error(t, setup(logrus.New(), &buf, "info", "xml"))
	assert.NoError(t, setup(logrus.New(), &buf, "warn", ""))
}
