package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/analyzer"
	"github.com/SAIKIRANREDDY98/JH/internal/assist"
	"github.com/SAIKIRANREDDY98/JH/internal/browser"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
	"github.com/SAIKIRANREDDY98/JH/internal/decision"
	"github.com/SAIKIRANREDDY98/JH/internal/filler"
	"github.com/SAIKIRANREDDY98/JH/internal/flow"
	"github.com/SAIKIRANREDDY98/JH/internal/history"
	"github.com/SAIKIRANREDDY98/JH/internal/observability"
)

// newApplyCmd creates and configures the `apply` command.
func newApplyCmd() *cobra.Command {
	applyCmd := &cobra.Command{
		Use:   "apply [job-url]",
		Short: "Runs the autofill flow against a job application page",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so command-line values override config and env.
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("flow.artifacts_dir", cmd.Flags().Lookup("artifacts")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg := config.Get()
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to re-unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			target := args[0]
			if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
				target = "https://" + target
			}

			profile, err := loadProfile(viper.GetString("profile"))
			if err != nil {
				return err
			}

			logger.Info("Starting application run",
				zap.String("target", target),
				zap.Int("data_steps", len(profile.Steps)),
				zap.Bool("headless", cfg.Browser.Headless),
			)

			components, err := initializeApplyComponents(ctx, cfg, logger)
			if err != nil {
				if components != nil {
					components.Shutdown(ctx)
				}
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown(ctx)

			session, err := components.BrowserManager.NewSession(ctx)
			if err != nil {
				return fmt.Errorf("failed to open browser session: %w", err)
			}
			defer session.Close(context.Background())

			run, runErr := components.Orchestrator.Run(ctx, session, target, profile)
			fmt.Printf("\n%s\n", flow.Summary(run))
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					logger.Warn("Run aborted gracefully", zap.String("run_id", run.ID))
					return fmt.Errorf("run aborted by user signal")
				}
				return runErr
			}
			return nil
		},
	}

	applyCmd.Flags().StringP("profile", "p", "profile.json", "Path to the applicant profile JSON file.")
	applyCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")
	applyCmd.Flags().String("artifacts", "artifacts", "Directory for failure screenshots and snapshots. (Overrides config/env)")

	return applyCmd
}

// applyComponents holds initialized services.
type applyComponents struct {
	BrowserManager *browser.Manager
	Resolver       schemas.DecisionResolver
	Orchestrator   *flow.Orchestrator
	History        schemas.RunStore
}

// Shutdown gracefully closes all components.
func (ac *applyComponents) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if ac.BrowserManager != nil {
		if err := ac.BrowserManager.Shutdown(shutdownCtx); err != nil {
			observability.GetLogger().Warn("Error during browser manager shutdown", zap.Error(err))
		}
	}
	if ac.History != nil {
		ac.History.Close()
	}
}

// initializeApplyComponents handles dependency injection.
func initializeApplyComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*applyComponents, error) {
	components := &applyComponents{}

	// 1. Browser manager
	manager, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return components, fmt.Errorf("failed to initialize browser manager: %w", err)
	}
	components.BrowserManager = manager

	// 2. Optional assist classifier
	var fieldAssist schemas.FieldAssist
	if cfg.Assist.Enabled {
		ga, err := assist.NewGeminiAssist(ctx, cfg.Assist, logger)
		if err != nil {
			return components, fmt.Errorf("failed to initialize assist classifier: %w", err)
		}
		fieldAssist = ga
	}

	// 3. Analyzer and filler
	pageAnalyzer := analyzer.New(cfg.Analyzer, logger, fieldAssist)
	fillExecutor := filler.New(cfg.Filler, logger)

	// 4. Decision resolver with persisted preferences
	prefStore, err := decision.NewPrefStore(cfg.Decision.PreferencesPath, logger)
	if err != nil {
		return components, fmt.Errorf("failed to create preference store: %w", err)
	}
	if err := prefStore.Load(); err != nil {
		return components, fmt.Errorf("failed to load preferences: %w", err)
	}
	resolver := decision.NewResolver(prefStore, logger)
	components.Resolver = resolver

	// 5. Optional run history
	var runStore schemas.RunStore
	if cfg.History.DSN != "" {
		store, err := history.NewPostgresStore(ctx, cfg.History.DSN, logger)
		if err != nil {
			return components, fmt.Errorf("failed to initialize run history: %w", err)
		}
		runStore = store
		components.History = store
	}

	// 6. Orchestrator
	orch, err := flow.New(cfg.Flow, cfg.Decision, pageAnalyzer, fillExecutor, resolver, runStore, logger)
	if err != nil {
		return components, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	components.Orchestrator = orch

	return components, nil
}

// loadProfile reads and validates the applicant profile file.
func loadProfile(path string) (*schemas.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var profile schemas.Profile
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if len(profile.Steps) == 0 {
		return nil, fmt.Errorf("profile %s has no step data", path)
	}
	return &profile, nil
}
