package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rsadesk/internal/app"
	"rsadesk/internal/config"
	"rsadesk/internal/logger"

	"github.com/spf13/cobra"
)

// ConfigEnv names the variable that points at the config file when
// --config is not given.
const ConfigEnv = "RSADESK_CONFIG"

const defaultConfigPath = "configs/config.yaml"

// session is the state shared by every subcommand of one invocation.
type session struct {
	configPath string
	cfg        *config.Config
	logs       *logOutputs
}

func NewRoot() *cobra.Command {
	s := &session{}
	cmd := &cobra.Command{
		Use:           "rsadesk",
		Short:         "Broker order desk: fan BUY/SELL orders out to the per-broker bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			s.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), s)
		},
	}
	cmd.PersistentFlags().StringVar(&s.configPath, "config", "", "config file (default $"+ConfigEnv+" or "+defaultConfigPath+")")

	cmd.AddCommand(newServeCmd(s))
	cmd.AddCommand(newOrderCmd(s, "buy"))
	cmd.AddCommand(newOrderCmd(s, "sell"))
	cmd.AddCommand(newSyncCmd(s))
	cmd.AddCommand(newLogCmd(s))
	return cmd
}

// Execute runs the root command and reports a failure on stderr.
func Execute(ctx context.Context) int {
	root := NewRoot()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (s *session) setup() error {
	path := strings.TrimSpace(s.configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logs, err := setupLogOutputs(cfg.App)
	if err != nil {
		return fmt.Errorf("init log output: %w", err)
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded (env=%s, file=%s)", cfg.App.Env, path)
	s.cfg = cfg
	s.logs = logs
	return nil
}

func (s *session) teardown() {
	if s.logs != nil {
		s.logs.Close()
		s.logs = nil
	}
}

func (s *session) app() (*app.App, error) {
	if s.cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return app.NewApp(s.cfg)
}
