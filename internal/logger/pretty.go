// internal/logger/pretty.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	config := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewConsoleEncoder(config)
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// FormatMessage creates user-friendly log messages.
// Второй результат false, если шаблон для сообщения не найден.
func FormatMessage(msg string, fields ...zap.Field) (string, bool) {
	switch {
	case strings.Contains(msg, "Identity loaded"):
		return fmt.Sprintf("%s🔑 Identity %s%s", ColorBlue, shortenAddress(extractField(fields, "pubkey")), ColorReset), true

	case strings.Contains(msg, "Airdrop requested"):
		return fmt.Sprintf("%s🪂 Airdrop of %s lamports requested%s", ColorYellow, extractField(fields, "lamports"), ColorReset), true

	case strings.Contains(msg, "Account funded"):
		return fmt.Sprintf("%s💰 Balance: %s lamports%s", ColorGreen, extractField(fields, "balance"), ColorReset), true

	case strings.Contains(msg, "Transaction sent"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s📤 Transaction sent: %s%s", ColorYellow, shortenSignature(sig), ColorReset), true

	case strings.Contains(msg, "Transaction confirmed"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s✅ %s confirmed: %s%s", ColorGreen, extractField(fields, "stage"), shortenSignature(sig), ColorReset), true

	case strings.Contains(msg, "Mint pipeline completed"):
		return fmt.Sprintf("%s🎉 NFT minted: %s%s", ColorGreen+ColorBold, extractField(fields, "mint"), ColorReset), true

	default:
		return msg, false
	}
}

// Helper functions
func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Uint64Type, zapcore.Int64Type, zapcore.Uint32Type, zapcore.Int32Type:
			return fmt.Sprintf("%d", field.Integer)
		default:
			return fmt.Sprintf("%v", field.Interface)
		}
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// MessageFormatCore wraps a zapcore.Core and replaces known messages with
// their pretty form; fields of a replaced message are dropped.
type MessageFormatCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *MessageFormatCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *MessageFormatCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &MessageFormatCore{core: c.core, fields: merged}
}

func (c *MessageFormatCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *MessageFormatCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	if pretty, ok := FormatMessage(entry.Message, all...); ok {
		entry.Message = pretty
		return c.core.Write(entry, nil)
	}
	return c.core.Write(entry, all)
}

func (c *MessageFormatCore) Sync() error {
	return c.core.Sync()
}
