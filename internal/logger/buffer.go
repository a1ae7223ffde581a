package logger

import (
	"encoding/json"
	"sync"
	"time"
)

// формат zapcore.ISO8601TimeEncoder
const iso8601Layout = "2006-01-02T15:04:05.000Z0700"

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Fields    map[string]interface{}
}

// LogBuffer is a thread-safe ring buffer of recent log entries.
// It implements io.Writer so it can back a zapcore JSON core.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries uint64
}

// NewLogBuffer creates a new log buffer with the specified size
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Write принимает одну JSON-запись zap; нераспознанные строки сохраняются как есть.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	entry := LogEntry{Timestamp: time.Now()}
	fields := make(map[string]interface{})
	if err := json.Unmarshal(p, &fields); err != nil {
		entry.Message = string(p)
	} else {
		if ts, ok := fields["timestamp"].(string); ok {
			if parsed, err := time.Parse(iso8601Layout, ts); err == nil {
				entry.Timestamp = parsed
			}
		}
		entry.Level, _ = fields["level"].(string)
		entry.Message, _ = fields["msg"].(string)
		for _, key := range []string{"timestamp", "level", "msg", "caller", "stacktrace"} {
			delete(fields, key)
		}
		entry.Fields = fields
	}
	lb.Add(entry)
	return len(p), nil
}

// Add adds a new log entry to the buffer
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// GetRecentLogs returns the most recent log entries (up to limit), oldest first
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// Total returns the number of entries ever written
func (lb *LogBuffer) Total() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries
}
