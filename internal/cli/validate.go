package cli

import (
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	cifdict "github.com/reoring/cifdict"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate data files against the dictionary",
		Long:  "Validates each FILE (\"-\" for standard input). Exits with status 1 if any file violates the dictionary.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args)
		},
	}
	cmd.Flags().String("format", "", "Input format: "+fmt.Sprint(cifdict.Formats()))
	cmd.Flags().Bool("all", false, "Report every violation instead of stopping at the first")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")
	return cmd
}

// fileResult is the JSON output of one validated file.
type fileResult struct {
	File     string         `json:"file"`
	OK       bool           `json:"ok"`
	Blocks   []string       `json:"blocks,omitempty"`
	Issues   cifdict.Issues `json:"issues,omitempty"`
	Warnings cifdict.Issues `json:"warnings,omitempty"`
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	all, _ := cmd.Flags().GetBool("all")
	output, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = a.cfg.Format
	}
	if output != "text" && output != "json" {
		return fmt.Errorf("unknown output format %q", output)
	}
	if _, err := cifdict.DriverFor(format); err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := a.readDictionary(ctx)
	if err != nil {
		return err
	}
	opt := a.cfg.ValidateOpt(a.log)
	opt.CollectAll = opt.CollectAll || all

	var results []fileResult
	failed := false
	for _, name := range args {
		res, err := a.validateFile(cmd, d, name, format, opt)
		if err != nil {
			return err
		}
		failed = failed || !res.OK
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		enc := j.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printResult(out, res)
		}
	}
	if failed {
		return ErrInvalid
	}
	return nil
}

func (a *app) validateFile(cmd *cobra.Command, d *cifdict.Dictionary, name, format string, opt cifdict.ValidateOpt) (fileResult, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fileResult{}, err
		}
		defer f.Close()
		r = f
	}
	src, err := cifdict.NewSource(format, r)
	if err != nil {
		return fileResult{}, err
	}
	rep, err := cifdict.ValidateWithReport(cmd.Context(), d, src, opt)
	res := fileResult{File: name, Blocks: rep.Blocks, Warnings: rep.Warnings}
	if err != nil {
		iss, ok := cifdict.AsIssues(err)
		if !ok {
			return fileResult{}, fmt.Errorf("%s: %w", name, err)
		}
		res.Issues = iss
		a.log.Debug("validation failed", "file", name, "issues", len(iss))
		return res, nil
	}
	res.OK = true
	if len(rep.UnknownCategories) > 0 {
		a.log.Info("categories not in dictionary", "file", name, "categories", rep.UnknownCategories)
	}
	return res, nil
}

func printResult(w io.Writer, res fileResult) {
	for _, it := range res.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", res.File, it)
	}
	if res.OK {
		fmt.Fprintf(w, "%s: ok\n", res.File)
		return
	}
	for _, it := range res.Issues {
		fmt.Fprintf(w, "%s: %s\n", res.File, it)
	}
}
