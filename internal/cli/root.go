// Package cli implements the cifdict commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cifdict "github.com/reoring/cifdict"
	"github.com/reoring/cifdict/i18n"
	"github.com/reoring/cifdict/internal/config"
	_ "github.com/reoring/cifdict/source" // registers the mmjson driver
)

// ErrInvalid is returned by validate when any input violates the dictionary.
var ErrInvalid = errors.New("validation failed")

// app holds the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	dictPath   string
	logLevel   string
	logFormat  string
	lang       string

	cfg config.Config
	log *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cifdict",
		Short:         "Validate CIF data against a DDL dictionary",
		Long:          "Reads a STAR/CIF dictionary and checks data files for mandatory categories and keywords, item types and enumerations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file (YAML)")
	pf.StringVarP(&a.dictPath, "dict", "d", "", "Dictionary path (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&a.lang, "lang", "", "Message language: en or ja")

	root.AddCommand(newValidateCmd(a), newDictCmd(a))
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrInvalid) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dictPath != "" {
		cfg.Dictionary = a.dictPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.lang != "" {
		cfg.Language = a.lang
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	i18n.SetLanguage(cfg.Language)
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func (a *app) readDictionary(ctx context.Context) (*cifdict.Dictionary, error) {
	if a.cfg.Dictionary == "" {
		return nil, errors.New("no dictionary given (use --dict or the config file)")
	}
	f, err := os.Open(a.cfg.Dictionary)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := cifdict.ReadDictionary(ctx, cifdict.CIFReader(f), cifdict.ReadOpt{Logger: a.log})
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", a.cfg.Dictionary, err)
	}
	a.log.Info("dictionary loaded", "path", a.cfg.Dictionary, "categories", d.Len())
	return d, nil
}
