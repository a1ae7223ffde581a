// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solbc/transaction"
	"go.uber.org/zap"
)

// Options настраивает клиент.
type Options struct {
	RequestTimeout time.Duration
	Tx             transaction.Config
	Metrics        *transaction.Metrics
}

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc      *rpc.Client
	txs      *transaction.Manager
	analyzer *ErrorAnalyzer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts Options) *Client {
	rpcClient := rpc.New(rpcURL)
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Tx.RequestTimeout <= 0 {
		opts.Tx.RequestTimeout = opts.RequestTimeout
	}
	return &Client{
		rpc:      rpcClient,
		txs:      transaction.NewManager(rpcClient, logger, opts.Tx, opts.Metrics),
		analyzer: NewErrorAnalyzer(logger),
		timeout:  opts.RequestTimeout,
		logger:   logger.Named("solbc-client"),
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

func (c *Client) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	sig, err := c.rpc.RequestAirdrop(ctx, pubkey, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Warn("RequestAirdrop error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetMinimumBalanceForRentExemption error", zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// SendAndConfirmTransaction отправляет транзакцию один раз и ждёт подтверждения.
// Ошибки симуляции разбираются ErrorAnalyzer и пишутся в лог.
func (c *Client) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	status, err := c.txs.SendAndConfirm(ctx, tx)
	if err != nil {
		analysis := c.analyzer.AnalyzeRPCError(err)
		if analysis.Type == "rpc_error" {
			c.analyzer.LogAnalysis(analysis)
			if analysis.ProgramMessage != "" {
				err = fmt.Errorf("%w (%s)", err, analysis.ProgramMessage)
			}
		}
		if status != nil {
			return status.Signature, err
		}
		return solana.Signature{}, err
	}
	return status.Signature, nil
}

// GetAccountData возвращает сырые данные аккаунта.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	if err != nil {
		c.logger.Debug("GetAccountData error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	return result.Value.Data.GetBinary(), nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
