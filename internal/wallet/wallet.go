// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrStorage возвращается, когда ключ не удалось прочитать или сохранить.
var ErrStorage = errors.New("identity storage failure")

// Wallet представляет кошелёк Solana.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	return fromPrivateKey(solana.PrivateKey(privateKeyBytes)), nil
}

func fromPrivateKey(key solana.PrivateKey) *Wallet {
	return &Wallet{
		PrivateKey: key,
		PublicKey:  key.PublicKey(),
	}
}

// LoadOrCreate возвращает ключ из файла в формате solana-keygen.
// Если файла нет, генерирует новый ключ и сохраняет его; второй результат
// сообщает, был ли ключ создан. Повреждённый файл не перезаписывается.
func LoadOrCreate(path string) (*Wallet, bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
		}
		return fromPrivateKey(key), false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := save(path, key); err != nil {
		return nil, false, err
	}
	return fromPrivateKey(key), true, nil
}

// save пишет ключ JSON-массивом из 64 байт, как solana-keygen.
func save(path string, key solana.PrivateKey) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
		}
	}

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("%w: encode key: %v", ErrStorage, err)
	}

	// O_EXCL: не затираем файл, появившийся между Stat и записью
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorage, path, err)
	}
	return nil
}

// SignTransaction ставит подпись кошелька в его слот транзакции.
// Подписи других участников не затрагиваются.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	if !tx.Message.IsSigner(w.PublicKey) {
		return fmt.Errorf("wallet %s is not a signer of the transaction", w.PublicKey)
	}
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	return err
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
