package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/config"
	"github.com/iksnae/tgsum/internal/prompt"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	healthcheckOffline bool
	healthcheckTimeout time.Duration
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that tgsum is configured and can reach its services",
	Long: `Check the health of tgsum by verifying:
  • Settings file and prompt templates
  • Required secrets in the environment
  • Summary history database
  • Telegram session (skipped with --offline)
  • OpenRouter API key and default model (skipped with --offline)

Run with --verbose for detailed diagnostic information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 tgsum Health Check"))
		fmt.Println()

		failed := 0
		fail := func(msg string, err error) {
			failed++
			fmt.Println(errorStyle.Render("❌ "+msg+":"), err)
		}

		// Step 1: Settings
		fmt.Println(infoStyle.Render("Step 1: Loading settings..."))
		cfg, err := loadConfig()
		if err != nil {
			fail("Failed to load configuration", err)
			fmt.Println()
			return fmt.Errorf("health check failed: %w", err)
		}
		if _, statErr := os.Stat(cfg.Path); statErr == nil {
			fmt.Println(successStyle.Render("✅ Settings loaded from " + cfg.Path))
		} else {
			fmt.Println(warningStyle.Render("⚠️  " + cfg.Path + " not found, using defaults"))
		}
		if verbose {
			fmt.Printf("   Default model: %s (%s)\n", cfg.Settings.OpenRouter.DefaultModel, cfg.ResolveModel(""))
			fmt.Printf("   Default limit: %d messages\n", cfg.Settings.MessageFetching.DefaultLimit)
			fmt.Printf("   Model aliases: %v\n", cfg.ModelAliases())
		}
		fmt.Println()

		// Step 2: Prompts
		fmt.Println(infoStyle.Render("Step 2: Checking prompt templates..."))
		checkPrompts(cfg, fail)
		fmt.Println()

		// Step 3: Secrets
		fmt.Println(infoStyle.Render("Step 3: Checking secrets..."))
		telegramErr := cfg.RequireSession()
		openRouterErr := cfg.RequireOpenRouter()
		if err := telegramErr; err != nil {
			fail("Telegram credentials incomplete", err)
		} else {
			fmt.Println(successStyle.Render("✅ Telegram credentials present"))
		}
		if err := openRouterErr; err != nil {
			fail("OpenRouter credentials incomplete", err)
		} else {
			fmt.Println(successStyle.Render("✅ OpenRouter API key present"))
		}
		if cfg.Secrets.DefaultChannelID == "" {
			fmt.Println(warningStyle.Render("⚠️  DEFAULT_TELEGRAM_CHANNEL_ID not set, summarize will need -c"))
		} else if _, err := telegram.ParseChatRef(cfg.Secrets.DefaultChannelID); err != nil {
			fail("DEFAULT_TELEGRAM_CHANNEL_ID is invalid", err)
		}
		fmt.Println()

		// Step 4: History
		fmt.Println(infoStyle.Render("Step 4: Checking summary history..."))
		checkHistory(commandContext(cmd), cfg, fail)
		fmt.Println()

		if healthcheckOffline {
			fmt.Println(warningStyle.Render("⚠️  Skipping network checks (--offline)"))
			fmt.Println()
		} else {
			ctx, cancel := context.WithTimeout(commandContext(cmd), healthcheckTimeout)
			defer cancel()

			// Step 5: Telegram
			fmt.Println(infoStyle.Render("Step 5: Connecting to Telegram..."))
			if telegramErr != nil {
				fmt.Println(warningStyle.Render("⚠️  Skipped, credentials incomplete"))
			} else {
				checkTelegram(ctx, cfg, fail)
			}
			fmt.Println()

			// Step 6: OpenRouter
			fmt.Println(infoStyle.Render("Step 6: Connecting to OpenRouter..."))
			if openRouterErr != nil {
				fmt.Println(warningStyle.Render("⚠️  Skipped, credentials incomplete"))
			} else {
				checkOpenRouter(ctx, cfg, fail)
			}
			fmt.Println()
		}

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()
		if failed > 0 {
			fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d problem(s))", failed)))
			return fmt.Errorf("health check failed: %d problem(s) found", failed)
		}
		fmt.Println(successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func checkPrompts(cfg *config.Config, fail func(string, error)) {
	names, err := prompt.List(cfg.Settings.PromptsDir)
	if err != nil {
		fail("Failed to list prompt templates", err)
		return
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Found %d prompt template(s)", len(names))))
	if verbose {
		for _, n := range names {
			fmt.Printf("   • %s\n", n)
		}
	}

	name := cfg.Settings.DefaultPrompt.PromptTemplateName
	loader := prompt.NewLoader(cfg.Settings.PromptsDir, name, cfg.Settings.DefaultPrompt.System.Prompt)
	if _, err := loader.Load(name); err != nil {
		fail("Default prompt "+name+" cannot be loaded", err)
		return
	}
	fmt.Println(successStyle.Render("✅ Default prompt " + name + " loads"))
}

func checkHistory(ctx context.Context, cfg *config.Config, fail func(string, error)) {
	store, err := openHistory(cfg)
	if err != nil {
		fail("Failed to open history database", err)
		return
	}
	if store == nil {
		fmt.Println(warningStyle.Render("⚠️  History disabled, summaries will not be cached"))
		return
	}
	defer store.Close()

	records, err := store.List(ctx, 0)
	if err != nil {
		fail("Failed to read history database", err)
		return
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ History available (%d summaries)", len(records))))
	if verbose {
		fmt.Printf("   Database: %s\n", cfg.Settings.History.Path)
	}
}

func checkTelegram(ctx context.Context, cfg *config.Config, fail func(string, error)) {
	var chats []internal.Chat
	err := withTelegram(ctx, cfg, func(ctx context.Context, src *telegram.Source) error {
		var listErr error
		chats, listErr = src.ListDialogs(ctx, 5)
		return listErr
	})
	if err != nil {
		fail("Telegram session is not usable", err)
		return
	}
	fmt.Println(successStyle.Render("✅ Telegram session authorized"))
	if verbose {
		for i, c := range chats {
			fmt.Printf("   [%d] %s (ID: %d)\n", i+1, c.Title, c.ID)
		}
	}
}

func checkOpenRouter(ctx context.Context, cfg *config.Config, fail func(string, error)) {
	client, err := newOpenRouter(cfg)
	if err != nil {
		fail("OpenRouter client", err)
		return
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		fail("Failed to list OpenRouter models", err)
		return
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ OpenRouter reachable (%d models)", len(models))))

	model := cfg.ResolveModel("")
	for _, m := range models {
		if m == model {
			fmt.Println(successStyle.Render("✅ Default model " + model + " is available"))
			return
		}
	}
	fmt.Println(warningStyle.Render("⚠️  Default model " + model + " not listed by OpenRouter"))
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckOffline, "offline", false, "Skip the Telegram and OpenRouter connection checks")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 30*time.Second, "Timeout for the network checks")
}
