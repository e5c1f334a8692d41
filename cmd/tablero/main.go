package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rmarin/tablero/internal/config"
	"github.com/rmarin/tablero/internal/drive"
	"github.com/rmarin/tablero/internal/log"
	"github.com/rmarin/tablero/internal/service"
	"github.com/rmarin/tablero/internal/store"
	"github.com/rmarin/tablero/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	var clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "clear the cached folder topology and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("tablero %s\n", Version)
		return
	}

	if clearCache {
		if err := config.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared.")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting tablero", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tablero requires an interactive terminal")
	}

	// Remote file storage client
	tokens := drive.StaticTokenSource(cfg.Server.Token)
	client := drive.NewClient(cfg.Server.URL, tokens, logger)

	// Persistent folder topology cache, scoped per server
	folderStore, err := store.NewFolderStore(config.GetCachePath(), cfg.Server.URL)
	if err != nil {
		logger.Warn("folder cache unavailable, continuing without persistence", "error", err)
		folderStore = nil
	}
	defer func() {
		if folderStore != nil {
			folderStore.Close()
		}
	}()

	cache := service.NewFolderCache(folderStore)
	resolver := service.NewResolver(client, cache, cfg.Server.RootFolder, logger)
	checklistSvc := service.NewChecklistService(client, resolver, logger)
	ledgerSvc := service.NewLedgerService(client, resolver, logger)
	dashboard := service.NewDashboard(checklistSvc, ledgerSvc, resolver, logger)

	model := tui.NewModel(dashboard, tui.Options{
		RefreshInterval: cfg.Preferences.RefreshInterval,
		ShowAdminBadge:  cfg.Preferences.ShowAdminBadge,
	}, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Tablero!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var serverURL string
	for {
		fmt.Printf("Enter the file API base URL [%s]: ", cfg.Server.URL)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimSpace(input)
		if serverURL == "" {
			serverURL = cfg.Server.URL
		}
		if serverURL != "" {
			break
		}
		fmt.Println("Base URL cannot be empty. Please try again.")
	}

	var token string
	for {
		fmt.Print("Enter your access token: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		token = strings.TrimSpace(input)
		if token != "" {
			break
		}
		fmt.Println("Token cannot be empty. Please try again.")
	}

	fmt.Printf("Enter the root folder name [%s]: ", cfg.Server.RootFolder)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if root := strings.TrimSpace(input); root != "" {
		cfg.Server.RootFolder = root
	}

	cfg.Server.URL = serverURL
	cfg.Server.Token = token

	// Verify the credentials reach the root folder before saving
	fmt.Println()
	fmt.Print("Checking access... ")
	if err := verifyAccess(cfg); err != nil {
		fmt.Println("✗")
		return fmt.Errorf("could not reach the root folder %q: %w", cfg.Server.RootFolder, err)
	}
	fmt.Println("✓")

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run tablero again to start the application.")

	return nil
}

// verifyAccess resolves the store list once against the configured server
func verifyAccess(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger := log.NullLogger()
	client := drive.NewClient(cfg.Server.URL, drive.StaticTokenSource(cfg.Server.Token), logger)
	resolver := service.NewResolver(client, service.NewFolderCache(nil), cfg.Server.RootFolder, logger)

	_, err := resolver.ResolveStores(ctx)
	return err
}
