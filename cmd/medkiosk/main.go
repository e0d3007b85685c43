package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard"
	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/backend/stub"
	"github.com/mrsinham/medkiosk/internal/config"
	"github.com/mrsinham/medkiosk/internal/intake"
	"github.com/mrsinham/medkiosk/internal/logging"
	"github.com/mrsinham/medkiosk/internal/receipt"
	"github.com/mrsinham/medkiosk/internal/speech"
	"github.com/mrsinham/medkiosk/internal/workflow"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	run := runCmd()

	rootCmd := &cobra.Command{
		Use:           "medkiosk",
		Short:         "Self-service medicine kiosk",
		Long:          "medkiosk guides a customer through a short intake and prints a priced prescription.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run.RunE,
	}
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: environment and .env)")
	rootCmd.Flags().AddFlagSet(run.Flags())

	rootCmd.AddCommand(run)
	rootCmd.AddCommand(stubBackendCmd())
	rootCmd.AddCommand(medicationsCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config, logger zerolog.Logger) *backend.Client {
	opts := []backend.Option{
		backend.WithTimeout(cfg.HTTPTimeout),
		backend.WithLogger(logger),
	}
	if cfg.BreakerEnabled {
		opts = append(opts, backend.WithBreaker(backend.BreakerSettings{
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerTimeout,
		}))
	}
	return backend.New(cfg.APIBaseURL, opts...)
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive kiosk (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			debug, _ := cmd.Flags().GetBool("debug")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel, debug)
			if err != nil {
				return err
			}
			defer closer.Close()

			var prefill *intake.Record
			if from != "" {
				prefill, err = intake.LoadFromYAML(from)
				if err != nil {
					return fmt.Errorf("loading intake: %w", err)
				}
			}

			client := newClient(cfg, logger)
			var registrar wizard.PatientRegistrar
			if cfg.RegisterPatients {
				registrar = client
			}

			logger.Info().
				Str("version", version).
				Str("api", cfg.APIBaseURL).
				Bool("speech", cfg.SpeechEnabled()).
				Msg("kiosk starting")

			return wizard.Run(wizard.Options{
				Controller: workflow.NewController(client, client, workflow.WithLogger(logger)),
				Recognizer: speech.New(speech.Config{
					STTURL:        cfg.STTURL,
					RecordCommand: cfg.RecordCommand,
					RecordSeconds: cfg.RecordSeconds,
				}, logger),
				Registrar:  registrar,
				Language:   cfg.Language,
				ReceiptDir: cfg.ReceiptDir,
				Prefill:    prefill,
				Logger:     logger,
			})
		},
	}
	cmd.Flags().String("from", "", "Pre-fill the first session from an intake YAML file")
	cmd.Flags().Bool("debug", false, "Log at debug level")
	return cmd
}

func stubBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-backend",
		Short: "Serve a canned analysis/prescription service for demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.StubAddr
			}

			logger, closer, err := logging.New(logging.Stderr, cfg.LogLevel, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			e := stub.New(logger)
			go func() {
				logger.Info().Str("addr", addr).Msg("stub backend listening")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server error")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info().Msg("shutting down stub backend")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: stub_addr)")
	return cmd
}

func medicationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "medications",
		Short: "List the medication catalog served by the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := newClient(cfg, zerolog.Nop())
			meds, err := client.ListMedications(cmd.Context())
			if err != nil {
				return errors.New(backend.UserMessage(err))
			}

			return printMedications(cmd.OutOrStdout(), meds)
		},
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35")).Padding(0, 1)

func printMedications(w io.Writer, meds []backend.Medication) error {
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Tên thuốc", "Dạng", "Đơn giá", "Tồn kho").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cell
		})

	for _, m := range meds {
		t.Row(
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.Form,
			receipt.VND(m.UnitPrice)+"/"+m.UnitType,
			strconv.Itoa(m.Stock),
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "medkiosk %s\n", version)
		},
	}
}
