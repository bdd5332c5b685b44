// Package rtapi holds the diagnostic message levels shared by the motion
// components and the logger built from them.
package rtapi

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// MsgLevel is a diagnostic verbosity, ordered from silent to everything
type MsgLevel int

const (
	MsgNone MsgLevel = iota
	MsgErr
	MsgWarn
	MsgInfo
	MsgDbg
	MsgAll
)

var levelNames = [...]string{
	MsgNone: "none",
	MsgErr:  "error",
	MsgWarn: "warning",
	MsgInfo: "info",
	MsgDbg:  "debug",
	MsgAll:  "all",
}

func (l MsgLevel) String() string {
	if l >= MsgNone && l <= MsgAll {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseMsgLevel accepts a level name (or the short forms err, warn, dbg)
func ParseMsgLevel(s string) (MsgLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return MsgNone, nil
	case "error", "err":
		return MsgErr, nil
	case "warning", "warn":
		return MsgWarn, nil
	case "info":
		return MsgInfo, nil
	case "debug", "dbg":
		return MsgDbg, nil
	case "all":
		return MsgAll, nil
	}
	return MsgNone, fmt.Errorf("unknown message level %q", s)
}

// Allows reports whether a message of severity msg passes a filter set to l.
// Nothing passes MsgNone; MsgNone messages never pass.
func (l MsgLevel) Allows(msg MsgLevel) bool {
	return msg > MsgNone && msg <= l
}

// ZapLevel returns the lowest zap level a filter set to l lets through
func (l MsgLevel) ZapLevel() zapcore.Level {
	switch {
	case l <= MsgErr:
		return zapcore.ErrorLevel
	case l == MsgWarn:
		return zapcore.WarnLevel
	case l == MsgInfo:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// Set implements pflag.Value
func (l *MsgLevel) Set(s string) error {
	v, err := ParseMsgLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Type implements pflag.Value
func (l *MsgLevel) Type() string {
	return "level"
}

// MarshalText implements encoding.TextMarshaler
func (l MsgLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *MsgLevel) UnmarshalText(b []byte) error {
	return l.Set(string(b))
}
