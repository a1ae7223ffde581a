// internal/blockchain/fakeledger/programs.go
package fakeledger

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
)

// Размеры SPL аккаунтов.
const (
	MintSize         = 82
	TokenAccountSize = 165
)

func (x *executor) system(accounts []*solana.AccountMeta, data []byte) error {
	inst, err := system.DecodeInstruction(accounts, data)
	if err != nil {
		return err
	}
	name := system.InstructionIDToName(inst.TypeID.Uint32())
	if err := x.fault(name); err != nil {
		return err
	}

	switch impl := inst.Impl.(type) {
	case *system.CreateAccount:
		funding, created := impl.GetFundingAccount(), impl.GetNewAccount()
		if err := requireSigner(funding); err != nil {
			return err
		}
		if err := requireSigner(created); err != nil {
			return err
		}
		if x.exists(created.PublicKey) {
			return fmt.Errorf("%w: %s", ErrAccountInUse, created.PublicKey)
		}
		if *impl.Lamports < RentExemptMinimum(*impl.Space) {
			return fmt.Errorf("%w: %d lamports for %d bytes", ErrNotRentExempt, *impl.Lamports, *impl.Space)
		}
		if err := x.debit(funding.PublicKey, *impl.Lamports); err != nil {
			return err
		}
		x.accounts[created.PublicKey] = &Account{
			Lamports: *impl.Lamports,
			Owner:    *impl.Owner,
			Data:     make([]byte, *impl.Space),
		}
		return nil
	default:
		return fmt.Errorf("%w: system %s", ErrUnsupportedInstruction, name)
	}
}

func (x *executor) token(accounts []*solana.AccountMeta, data []byte) error {
	inst, err := token.DecodeInstruction(accounts, data)
	if err != nil {
		return err
	}
	name := token.InstructionIDToName(inst.TypeID.Uint8())
	if err := x.fault(name); err != nil {
		return err
	}

	switch impl := inst.Impl.(type) {
	case *token.InitializeMint:
		acc, err := x.owned(impl.GetMintAccount().PublicKey, solana.TokenProgramID)
		if err != nil {
			return err
		}
		if len(acc.Data) != MintSize {
			return fmt.Errorf("%w: mint must be %d bytes", ErrInvalidAccountData, MintSize)
		}
		var current token.Mint
		if err := decode(acc.Data, &current); err == nil && current.IsInitialized {
			return ErrAlreadyInitialized
		}
		return encodeInto(acc, token.Mint{
			MintAuthority:   impl.MintAuthority,
			Decimals:        *impl.Decimals,
			IsInitialized:   true,
			FreezeAuthority: impl.FreezeAuthority,
		})

	case *token.InitializeAccount2:
		acc, err := x.owned(impl.GetAccount().PublicKey, solana.TokenProgramID)
		if err != nil {
			return err
		}
		if len(acc.Data) != TokenAccountSize {
			return fmt.Errorf("%w: token account must be %d bytes", ErrInvalidAccountData, TokenAccountSize)
		}
		var current token.Account
		if err := decode(acc.Data, &current); err == nil && current.State != token.Uninitialized {
			return ErrAlreadyInitialized
		}
		mintKey := impl.GetMintAccount().PublicKey
		if _, err := x.mint(mintKey); err != nil {
			return err
		}
		return encodeInto(acc, token.Account{
			Mint:  mintKey,
			Owner: *impl.Owner,
			State: token.Initialized,
		})

	case *token.MintTo:
		mintKey := impl.GetMintAccount().PublicKey
		mint, err := x.mint(mintKey)
		if err != nil {
			return err
		}
		if mint.MintAuthority == nil {
			return ErrFixedSupply
		}
		authority := impl.GetAuthorityAccount()
		if !authority.PublicKey.Equals(*mint.MintAuthority) {
			return fmt.Errorf("%w: mint authority is %s", ErrAuthorityMismatch, *mint.MintAuthority)
		}
		if err := requireSigner(authority); err != nil {
			return err
		}

		destKey := impl.GetDestinationAccount().PublicKey
		dest, err := x.owned(destKey, solana.TokenProgramID)
		if err != nil {
			return err
		}
		var holding token.Account
		if err := decode(dest.Data, &holding); err != nil || holding.State == token.Uninitialized {
			return fmt.Errorf("%w: %s", ErrUninitialized, destKey)
		}
		if !holding.Mint.Equals(mintKey) {
			return fmt.Errorf("%w: %s holds %s", ErrMintMismatch, destKey, holding.Mint)
		}

		amount := *impl.Amount
		if mint.Supply+amount < mint.Supply {
			return fmt.Errorf("%w: supply overflow", ErrInvalidAccountData)
		}
		mint.Supply += amount
		holding.Amount += amount
		if err := encodeInto(x.accounts[mintKey], *mint); err != nil {
			return err
		}
		return encodeInto(dest, holding)

	default:
		return fmt.Errorf("%w: token %s", ErrUnsupportedInstruction, name)
	}
}

var metadataInstructionNames = map[uint8]string{
	tokenmetadata.InstructionCreateMetadataAccountV3: "CreateMetadataAccountV3",
	tokenmetadata.InstructionCreateMasterEditionV3:   "CreateMasterEditionV3",
}

func (x *executor) metadata(accounts []*solana.AccountMeta, data []byte) error {
	inst, err := tokenmetadata.DecodeInstruction(accounts, data)
	if err != nil {
		return err
	}
	if err := x.fault(metadataInstructionNames[inst.Discriminator]); err != nil {
		return err
	}

	switch {
	case inst.CreateMetadataAccountV3 != nil:
		return x.createMetadata(accounts, inst.CreateMetadataAccountV3)
	case inst.CreateMasterEditionV3 != nil:
		return x.createMasterEdition(accounts, inst.CreateMasterEditionV3)
	default:
		return fmt.Errorf("%w: token metadata %d", ErrUnsupportedInstruction, inst.Discriminator)
	}
}

func (x *executor) createMetadata(accounts []*solana.AccountMeta, args *tokenmetadata.CreateMetadataAccountV3Args) error {
	metadataMeta, mintMeta, mintAuthority, payer, updateAuthority :=
		accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	expected, err := tokenmetadata.MetadataAddress(mintMeta.PublicKey)
	if err != nil {
		return err
	}
	if !expected.Equals(metadataMeta.PublicKey) {
		return fmt.Errorf("%w: metadata %s", ErrInvalidSeeds, metadataMeta.PublicKey)
	}

	mint, err := x.mint(mintMeta.PublicKey)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(mintAuthority.PublicKey) {
		return fmt.Errorf("%w: mint authority provided does not match the authority on the mint", ErrAuthorityMismatch)
	}
	for _, m := range []*solana.AccountMeta{mintAuthority, payer, updateAuthority} {
		if err := requireSigner(m); err != nil {
			return err
		}
	}
	if err := args.Data.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	_, bump, err := solana.FindProgramAddress(
		tokenmetadata.MasterEditionSeeds(tokenmetadata.ProgramID, mintMeta.PublicKey),
		tokenmetadata.ProgramID,
	)
	if err != nil {
		return err
	}

	standard := tokenmetadata.TokenStandardFungible
	if mint.Decimals == 0 {
		standard = tokenmetadata.TokenStandardFungibleAsset
	}

	record := &tokenmetadata.Metadata{
		Key:             tokenmetadata.KeyMetadataV1,
		UpdateAuthority: updateAuthority.PublicKey,
		Mint:            mintMeta.PublicKey,
		Data: tokenmetadata.Data{
			Name:                 args.Data.Name,
			Symbol:               args.Data.Symbol,
			URI:                  args.Data.URI,
			SellerFeeBasisPoints: args.Data.SellerFeeBasisPoints,
			Creators:             args.Data.Creators,
		},
		IsMutable:      args.IsMutable,
		EditionNonce:   &bump,
		TokenStandard:  &standard,
		Collection:     args.Data.Collection,
		Uses:           args.Data.Uses,
		CollectionSize: args.CollectionSize,
	}
	encoded, err := tokenmetadata.EncodeMetadata(record)
	if err != nil {
		return err
	}
	return x.allocate(payer.PublicKey, metadataMeta.PublicKey, tokenmetadata.ProgramID, encoded)
}

func (x *executor) createMasterEdition(accounts []*solana.AccountMeta, args *tokenmetadata.CreateMasterEditionV3Args) error {
	editionMeta, mintMeta, updateAuthority, mintAuthority, payer, metadataMeta :=
		accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]

	expectedEdition, err := tokenmetadata.MasterEditionAddress(mintMeta.PublicKey)
	if err != nil {
		return err
	}
	if !expectedEdition.Equals(editionMeta.PublicKey) {
		return fmt.Errorf("%w: edition %s", ErrInvalidSeeds, editionMeta.PublicKey)
	}
	expectedMetadata, err := tokenmetadata.MetadataAddress(mintMeta.PublicKey)
	if err != nil {
		return err
	}
	if !expectedMetadata.Equals(metadataMeta.PublicKey) {
		return fmt.Errorf("%w: metadata %s", ErrInvalidSeeds, metadataMeta.PublicKey)
	}

	metadataAcc, err := x.owned(metadataMeta.PublicKey, tokenmetadata.ProgramID)
	if err != nil {
		return err
	}
	record, err := tokenmetadata.DecodeMetadata(metadataAcc.Data)
	if err != nil {
		return err
	}
	if !record.Mint.Equals(mintMeta.PublicKey) {
		return fmt.Errorf("%w: metadata belongs to %s", ErrMintMismatch, record.Mint)
	}
	if !record.UpdateAuthority.Equals(updateAuthority.PublicKey) {
		return fmt.Errorf("%w: update authority is %s", ErrAuthorityMismatch, record.UpdateAuthority)
	}

	mint, err := x.mint(mintMeta.PublicKey)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(mintAuthority.PublicKey) {
		return fmt.Errorf("%w: mint authority provided does not match the authority on the mint", ErrAuthorityMismatch)
	}
	for _, m := range []*solana.AccountMeta{updateAuthority, mintAuthority, payer} {
		if err := requireSigner(m); err != nil {
			return err
		}
	}
	if mint.Decimals != 0 || mint.Supply != 1 {
		return fmt.Errorf("%w: supply %d, decimals %d", ErrEditionSupply, mint.Supply, mint.Decimals)
	}

	edition, err := tokenmetadata.EncodeMasterEdition(&tokenmetadata.MasterEdition{
		Key:       tokenmetadata.KeyMasterEditionV2,
		MaxSupply: args.MaxSupply,
	})
	if err != nil {
		return err
	}
	if err := x.allocate(payer.PublicKey, editionMeta.PublicKey, tokenmetadata.ProgramID, edition); err != nil {
		return err
	}

	// Полномочия минта переходят к edition: дальнейший MintTo невозможен.
	mint.MintAuthority = &editionMeta.PublicKey
	mint.FreezeAuthority = &editionMeta.PublicKey
	if err := encodeInto(x.accounts[mintMeta.PublicKey], *mint); err != nil {
		return err
	}

	standard := tokenmetadata.TokenStandardNonFungible
	record.TokenStandard = &standard
	encoded, err := tokenmetadata.EncodeMetadata(record)
	if err != nil {
		return err
	}
	metadataAcc.Data = encoded
	return nil
}

// mint возвращает инициализированный SPL минт.
func (x *executor) mint(pubkey solana.PublicKey) (*token.Mint, error) {
	acc, err := x.owned(pubkey, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	mint := new(token.Mint)
	if err := decode(acc.Data, mint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	if !mint.IsInitialized {
		return nil, fmt.Errorf("%w: mint %s", ErrUninitialized, pubkey)
	}
	return mint, nil
}

func decode(data []byte, v interface{}) error {
	return bin.NewBinDecoder(data).Decode(v)
}

// encodeInto сериализует v в данные аккаунта, сохраняя их размер.
func encodeInto(acc *Account, v interface{}) error {
	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(v); err != nil {
		return err
	}
	if buf.Len() > len(acc.Data) {
		return fmt.Errorf("%w: encoded %d bytes into %d", ErrInvalidAccountData, buf.Len(), len(acc.Data))
	}
	copy(acc.Data, buf.Bytes())
	return nil
}
