package rtapi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func TestMsgLevelOrder(t *testing.T) {
	levels := []MsgLevel{MsgNone, MsgErr, MsgWarn, MsgInfo, MsgDbg, MsgAll}
	for i, l := range levels {
		assert.Equal(t, MsgLevel(i), l, "level values are positional")
	}

	for _, filter := range levels {
		for _, msg := range levels {
			want := msg != MsgNone && msg <= filter
			assert.Equal(t, want, filter.Allows(msg), "filter %s msg %s", filter, msg)
		}
	}
}

func TestParseMsgLevel(t *testing.T) {
	tests := map[string]MsgLevel{
		"none":    MsgNone,
		"ERR":     MsgErr,
		"warning": MsgWarn,
		"warn":    MsgWarn,
		" info ":  MsgInfo,
		"dbg":     MsgDbg,
		"all":     MsgAll,
	}
	for in, want := range tests {
		got, err := ParseMsgLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMsgLevel("loud")
	assert.Error(t, err)
}

func TestMsgLevelZap(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, MsgErr.ZapLevel())
	assert.Equal(t, zapcore.WarnLevel, MsgWarn.ZapLevel())
	assert.Equal(t, zapcore.InfoLevel, MsgInfo.ZapLevel())
	assert.Equal(t, zapcore.DebugLevel, MsgDbg.ZapLevel())
	assert.Equal(t, zapcore.DebugLevel, MsgAll.ZapLevel())
}

func TestMsgLevelYAML(t *testing.T) {
	var cfg struct {
		Level MsgLevel `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: debug\n"), &cfg))
	assert.Equal(t, MsgDbg, cfg.Level)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "level: debug\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("level: shout\n"), &cfg))
}

func TestNewLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(MsgWarn, &buf)
	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("shown warning")
	log.Error("shown error")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "shown error")
	assert.Contains(t, out, "WARN")
}

func TestNewLoggerNone(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(MsgNone, &buf)
	log.Error("nothing")
	assert.Empty(t, buf.String())
	assert.NotNil(t, OrNop(nil))
}
