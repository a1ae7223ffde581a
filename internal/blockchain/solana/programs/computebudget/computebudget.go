// internal/blockchain/solana/programs/computebudget/computebudget.go
package computebudget

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	cb "github.com/gagliardetto/solana-go/programs/compute-budget"
)

// ProgramID программы Compute Budget.
var ProgramID = cb.ProgramID

// Config содержит параметры compute budget транзакции.
// Нулевые значения означают, что соответствующая инструкция не добавляется.
type Config struct {
	Units     uint32
	UnitPrice uint64 // micro-lamports за compute unit
}

// IsZero сообщает, что бюджет не задан.
func (c Config) IsZero() bool {
	return c.Units == 0 && c.UnitPrice == 0
}

// BuildInstructions создает инструкции для настройки бюджета
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	var instructions []solana.Instruction

	if config.Units > 0 {
		limit, err := cb.NewSetComputeUnitLimitInstruction(config.Units).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
		}
		instructions = append(instructions, limit)
	}

	if config.UnitPrice > 0 {
		price, err := cb.NewSetComputeUnitPriceInstruction(config.UnitPrice).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, price)
	}

	return instructions, nil
}
