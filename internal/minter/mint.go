// internal/minter/mint.go
package minter

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// MintOne выпускает ровно одну единицу токена в holding.
func (m *Minter) MintOne(ctx context.Context, mint, holding solana.PublicKey) (solana.Signature, error) {
	mintTo, err := token.NewMintToInstruction(1, mint, holding, m.identity.PublicKey, nil).ValidateAndBuild()
	if err != nil {
		return solana.Signature{}, fail(StageMint, ErrMintFailed, err)
	}

	sig, err := m.submit(ctx, StageMint, []solana.Instruction{mintTo})
	if err != nil {
		return sig, fail(StageMint, ErrMintFailed, err)
	}

	m.logger.Info("Token minted",
		zap.String("mint", mint.String()),
		zap.String("account", holding.String()))
	return sig, nil
}
