package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/hopswap/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the result to
// config.gen.yaml.
func RunTUI() error {
	var (
		thornodeURL     = "https://thornode.ninerealms.com"
		zrxURL          = "https://api.0x.org"
		evmChainID      = "eip155:1"
		evmRPCURL       string
		slippageBpsStr  = "100"
		affiliateBpsStr = "0"
		feeRecipient    string
		confirmStr      = "10s"
		journalDir      = "./wal/trades"
		confirm         bool
	)

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("HOPSWAP CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your swap engine.\n"))

	fmt.Println(stepStyle.Render("STEP 1: VENUES"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("THORNode URL").
				Value(&thornodeURL).
				Validate(validateURL),
			huh.NewInput().
				Title("0x Swap API URL").
				Value(&zrxURL).
				Validate(validateURL),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("HOPSWAP CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: EVM CHAIN"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("EVM chain").
				Options(
					huh.NewOption("Ethereum", "eip155:1"),
					huh.NewOption("Avalanche", "eip155:43114"),
					huh.NewOption("BNB Smart Chain", "eip155:56"),
				).
				Value(&evmChainID),
			huh.NewInput().
				Title("EVM JSON-RPC URL").
				Description("Node used for allowances and confirmations").
				Value(&evmRPCURL).
				Validate(validateURL),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("HOPSWAP CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TRADE SETTINGS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slippage tolerance (bps)").
				Description("100 = 1%").
				Value(&slippageBpsStr).
				Validate(validateBps),
			huh.NewInput().
				Title("Affiliate fee (bps)").
				Description("0 to disable").
				Value(&affiliateBpsStr).
				Validate(validateBps),
			huh.NewInput().
				Title("Fee recipient address").
				Description("Leave empty when affiliate fee is 0").
				Value(&feeRecipient),
			huh.NewInput().
				Title("Confirmation poll interval").
				Description("Duration string (e.g. 10s, 30s)").
				Value(&confirmStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Trade journal directory").
				Value(&journalDir),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("HOPSWAP CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"THORNode: %s\n0x API: %s\nEVM chain: %s\nSlippage: %s bps\nAffiliate: %s bps\nJournal: %s\n",
		thornodeURL, zrxURL, evmChainID, slippageBpsStr, affiliateBpsStr, journalDir,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	slippageBps, _ := strconv.ParseInt(slippageBpsStr, 10, 64)
	affiliateBps, _ := strconv.ParseInt(affiliateBpsStr, 10, 64)
	confirmInterval, _ := time.ParseDuration(confirmStr)

	cfgTmp := config.ConfigTmp{
		ThornodeURL:     thornodeURL,
		ZrxURL:          zrxURL,
		EVMChainID:      evmChainID,
		EVMRPCURL:       evmRPCURL,
		SlippageBps:     slippageBps,
		AffiliateBps:    affiliateBps,
		FeeRecipient:    feeRecipient,
		ConfirmInterval: confirmInterval,
		JournalDir:      journalDir,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	return nil
}

func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("url cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be a valid http(s) url")
	}
	return nil
}

func validateBps(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if v < 0 || v >= 10_000 {
		return fmt.Errorf("must be between 0 and 9999")
	}
	return nil
}
