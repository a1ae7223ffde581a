// internal/report/report.go
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"github.com/rovshanmuradov/solana-nft-mint/internal/ui/style"
)

type row struct {
	label string
	value string
}

// Render возвращает итог минта в виде панели для консоли.
func Render(result *minter.Result) string {
	if result == nil || result.Snapshot == nil {
		return style.ErrorStyle.Render("no snapshot available")
	}
	s := result.Snapshot

	sections := []string{
		style.HeaderStyle.Render("NFT minted"),
		table([]row{
			{"Identity", result.Identity.String()},
			{"Mint", s.Mint.String()},
			{"Token account", result.Holding.String()},
			{"Mint signature", signature(result.MintSignature)},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
		}),
		"",
		style.TitleStyle.Render("Metadata"),
		table([]row{
			{"Key", s.Key.String()},
			{"Name", s.Name},
			{"Symbol", s.Symbol},
			{"URI", s.URI},
			{"Seller fee (bps)", fmt.Sprintf("%d", s.SellerFeeBasisPoints)},
			{"Update authority", s.UpdateAuthority.String()},
			{"Mutable", yesNo(s.IsMutable)},
			{"Primary sale", yesNo(s.PrimarySaleHappened)},
			{"Token standard", tokenStandard(s)},
			{"Address", s.MetadataAddress.String()},
			{"Signature", signature(s.MetadataSignature)},
		}),
		"",
		style.TitleStyle.Render("Master edition"),
		table([]row{
			{"Address", s.EditionAddress.String()},
			{"Max supply", maxSupply(s.MaxSupply)},
			{"Signature", signature(s.EditionSignature)},
		}),
		"",
		style.MutedStyle.Render("snapshot source: " + s.Source),
	}

	return style.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// RenderFailure показывает стадию и причину остановки конвейера.
func RenderFailure(err error, exitCode int) string {
	stage := "unknown"
	var stageErr *minter.StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	return style.PanelStyle.
		BorderForeground(style.Red).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			style.ErrorStyle.Render("Mint failed"),
			table([]row{
				{"Stage", stage},
				{"Exit code", fmt.Sprintf("%d", exitCode)},
				{"Error", err.Error()},
			}),
		))
}

func table(rows []row) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			style.LabelStyle.Render(r.label),
			style.ValueStyle.Render(r.value),
		))
	}
	return strings.Join(lines, "\n")
}

func signature(sig solana.Signature) string {
	if sig.IsZero() {
		return "-"
	}
	return sig.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func maxSupply(v *uint64) string {
	if v == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *v)
}

func tokenStandard(s *minter.Snapshot) string {
	if s.TokenStandard == nil {
		return "-"
	}
	return s.TokenStandard.String()
}
