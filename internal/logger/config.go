// internal/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // мегабайты
	MaxAge      int  // дни
	MaxBackups  int  // количество файлов
	Compress    bool // сжимать ротированные файлы
	Development bool
	// Console выключается в TUI-режиме, чтобы не ломать отрисовку.
	Console bool
	// Tail хранит последние записи для отображения в TUI (может быть nil).
	Tail *LogBuffer
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "nft-mint.log",
		MaxSize:     20,   // 20 MB
		MaxAge:      7,    // 7 дней
		MaxBackups:  3,    // 3 файла
		Compress:    true, // сжимать старые логи
		Development: false,
		Console:     true,
	}
}
