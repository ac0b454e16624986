package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/tenancy-engine/api"
	"github.com/warp/tenancy-engine/auth"
	"github.com/warp/tenancy-engine/property"
	"github.com/warp/tenancy-engine/report"
	"github.com/warp/tenancy-engine/tenants"
)

// =============================================================================
// SERVE
// =============================================================================

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			credentials := auth.NewService(store)
			if cfg.AdminPassword != "" {
				created, err := credentials.Bootstrap(ctx, cfg.AdminUser, cfg.AdminPassword)
				if err != nil {
					return fmt.Errorf("failed to create operator: %w", err)
				}
				if created {
					log.Printf("Created operator %q", cfg.AdminUser)
				}
			} else if n, err := store.CountOperators(ctx); err == nil && n == 0 {
				log.Printf("Warning: no operator configured; set APART_ADMIN_PASSWORD or run 'apartd passwd'")
			}

			if cfg.TokenSecret == "" {
				log.Printf("Warning: APART_TOKEN_SECRET not set; login tokens expire when the server restarts")
			}
			tokens, err := auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL)
			if err != nil {
				return err
			}

			handler := api.NewHandler(store, credentials, tokens, property.SystemClock{}, cfg.Rules)

			// Bring statuses current before the first request.
			if moved, err := handler.Tenants.DetectMoveouts(ctx); err != nil {
				log.Printf("Warning: Failed to detect move-outs: %v", err)
			} else if len(moved) > 0 {
				log.Printf("Moved out %d tenant(s) on startup", len(moved))
			}

			router := api.NewRouter(handler, cfg.CORSOrigins)

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.Port),
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Start server in goroutine
			go func() {
				log.Printf("Server starting on http://localhost:%d", cfg.Port)
				log.Printf("API available at http://localhost:%d/api", cfg.Port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()

			// Wait for interrupt signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Println("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Println("Server stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from APART_PORT or 8080)")
	return cmd
}

// =============================================================================
// MAINTENANCE COMMANDS
// =============================================================================

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, cfg.DBPath)
			return nil
		},
	}
}

func moveoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moveouts",
		Short: "Move out tenants whose move-out date was reached",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ledger := tenants.NewLedger(store, property.SystemClock{}, cfg.Rules)
			moved, err := ledger.DetectMoveouts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "moved out %d tenant(s)\n", len(moved))
			for _, id := range moved {
				fmt.Fprintf(out, "  tenant %d\n", id)
			}
			return nil
		},
	}
}

func exportPaymentsCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export-payments",
		Short: "Export every payment row as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			reportType := report.TypePaymentsCSV
			switch format {
			case "csv":
			case "xlsx":
				reportType = report.TypePaymentsXLSX
				if output == "" || output == "-" {
					return fmt.Errorf("--format xlsx needs an output file (-o)")
				}
			default:
				return fmt.Errorf("unknown format %q (use csv or xlsx)", format)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			reports := report.NewService(store, property.SystemClock{})
			if reportType == report.TypePaymentsXLSX {
				err = reports.ExportPaymentsXLSX(cmd.Context(), w)
			} else {
				err = reports.ExportPayments(cmd.Context(), w)
			}
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				if _, err := reports.Log(cmd.Context(), reportType, output); err != nil {
					return err
				}
				log.Printf("Payments exported to %s", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	return cmd
}

func incomeReportCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "income-report",
		Short: "Print income over the last N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			reports := report.NewService(store, property.SystemClock{})
			summary, err := reports.IncomeSummary(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), summary.String())
			_, err = reports.Log(cmd.Context(), report.TypeIncomeSummary, "")
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "window in days")
	return cmd
}

func passwdCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set the operator password (read from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = cfg.AdminUser
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "New password for %s: ", username)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			password := strings.TrimRight(line, "\r\n")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := auth.NewService(store).Set(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\npassword updated for %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "operator username (default APART_ADMIN_USER)")
	return cmd
}
