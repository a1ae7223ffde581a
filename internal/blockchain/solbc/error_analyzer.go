// internal/blockchain/solbc/error_analyzer.go
package solbc

import (
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// ProgramFailure описывает сбой программы, извлечённый из логов симуляции.
type ProgramFailure struct {
	ProgramID string
	Reason    string
}

// ErrorAnalysis describes an error returned by sendTransaction.
type ErrorAnalysis struct {
	Type             string
	Code             int
	Message          string
	SimulationFailed bool
	Logs             []string
	InstructionError interface{}
	Failures         []ProgramFailure
	// Последнее сообщение "Program log: Error: ..." (token / metadata программы).
	ProgramMessage string
}

// ErrorAnalyzer provides methods to analyze Solana transaction errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// AnalyzeRPCError analyzes a jsonrpc.RPCError and extracts detailed information
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) ErrorAnalysis {
	if err == nil {
		return ErrorAnalysis{Type: "none"}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return ErrorAnalysis{Type: "generic_error", Message: err.Error()}
	}

	result := ErrorAnalysis{
		Type:    "rpc_error",
		Code:    rpcErr.Code,
		Message: rpcErr.Message,
	}

	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return result
	}
	result.SimulationFailed = true

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return result
	}

	if logs, ok := dataMap["logs"].([]interface{}); ok {
		for _, logEntry := range logs {
			logStr, ok := logEntry.(string)
			if !ok {
				continue
			}
			result.Logs = append(result.Logs, logStr)

			if failure, ok := parseProgramFailure(logStr); ok {
				result.Failures = append(result.Failures, failure)
			}
			if msg, ok := strings.CutPrefix(logStr, "Program log: Error: "); ok {
				result.ProgramMessage = msg
			}
		}
	}

	if instrErr, ok := dataMap["err"]; ok {
		result.InstructionError = instrErr
	}

	return result
}

// parseProgramFailure разбирает строку вида
// "Program metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s failed: custom program error: 0x5".
func parseProgramFailure(logStr string) (ProgramFailure, bool) {
	rest, ok := strings.CutPrefix(logStr, "Program ")
	if !ok {
		return ProgramFailure{}, false
	}
	programID, reason, ok := strings.Cut(rest, " failed: ")
	if !ok || strings.Contains(programID, " ") {
		return ProgramFailure{}, false
	}
	return ProgramFailure{ProgramID: programID, Reason: strings.TrimSpace(reason)}, true
}

// LogAnalysis пишет разбор ошибки в лог.
func (ea *ErrorAnalyzer) LogAnalysis(analysis ErrorAnalysis, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("type", analysis.Type),
		zap.Int("code", analysis.Code),
		zap.String("message", analysis.Message),
	}, extra...)
	if analysis.ProgramMessage != "" {
		fields = append(fields, zap.String("program_message", analysis.ProgramMessage))
	}
	for _, f := range analysis.Failures {
		ea.logger.Warn("Program failed",
			zap.String("program", f.ProgramID),
			zap.String("reason", f.Reason))
	}
	if len(analysis.Logs) > 0 {
		fields = append(fields, zap.Strings("logs", analysis.Logs))
	}
	ea.logger.Error("Transaction rejected", fields...)
}
