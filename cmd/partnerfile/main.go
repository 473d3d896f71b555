// Command partnerfile serves the business-partner upload web tool and
// offers offline helpers for working with the CSV upload format.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bpdmkit/partnerfile"
	"github.com/bpdmkit/partnerfile/fileformat"
	"github.com/bpdmkit/partnerfile/i18n"
	"github.com/bpdmkit/partnerfile/internal/config"
	"github.com/bpdmkit/partnerfile/internal/server"
	"github.com/bpdmkit/partnerfile/source"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "partnerfile",
	Short: "Upload tool for the business-partner data pool",
	Long: `partnerfile converts the CSV upload format for business-partner
records into API payloads and back. The serve command runs the web tool;
convert and export-header work offline on local files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload web tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		creds, err := config.LoadCredentials(cfg.CredentialsFile)
		if err != nil {
			return err
		}
		i18n.SetLanguage(cfg.Language)

		s := server.New(cfg, creds, logger)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- s.Start() }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	},
}

var convertJSON bool

var convertCmd = &cobra.Command{
	Use:   "convert <file.csv>",
	Short: "Convert an upload file offline and report its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, derr := fileformat.Decode(cmd.Context(), data, fileformat.Options{})
		if iss, ok := partnerfile.AsIssues(derr); ok {
			for _, i := range iss {
				fmt.Fprintln(os.Stderr, i.Error())
			}
		} else if derr != nil {
			return derr
		}
		if res == nil {
			return fmt.Errorf("file could not be read")
		}
		if convertJSON {
			out, err := json.MarshalIndent(res.Payloads, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Printf("%d records converted, %d issues\n", len(res.Payloads), issueCount(derr))
		return nil
	},
}

var headerDelimiter string

var exportHeaderCmd = &cobra.Command{
	Use:   "export-header",
	Short: "Print an empty upload file with the full column header",
	RunE: func(cmd *cobra.Command, args []string) error {
		delim := ';'
		if headerDelimiter != "" {
			delim = []rune(headerDelimiter)[0]
		}
		out, err := source.WriteAllBOM([][]string{fileformat.Header()}, delim)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func issueCount(err error) int {
	if iss, ok := partnerfile.AsIssues(err); ok {
		return len(iss)
	}
	if err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "server configuration file")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "print the API payloads as JSON")
	exportHeaderCmd.Flags().StringVar(&headerDelimiter, "delimiter", ";", "field delimiter")

	rootCmd.AddCommand(serveCmd, convertCmd, exportHeaderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
