package cli

import (
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cifdict "github.com/reoring/cifdict"
)

func newDictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect a dictionary",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the categories and keywords of the dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.readDictionary(cmd.Context())
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), output, dictViewOf(d), printDictText)
		},
	}
	show.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print a JSON Schema for mmJSON documents described by the dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.readDictionary(cmd.Context())
			if err != nil {
				return err
			}
			s, err := d.JSONSchema()
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), output, s, nil)
		},
	}
	schema.Flags().StringP("output", "o", "json", "Output format: json or yaml")

	cmd.AddCommand(show, schema)
	return cmd
}

type dictView struct {
	Categories []categoryView `json:"categories" yaml:"categories"`
}

type categoryView struct {
	Name      string        `json:"name" yaml:"name"`
	Mandatory string        `json:"mandatory" yaml:"mandatory"`
	Keywords  []keywordView `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type keywordView struct {
	Name        string   `json:"name" yaml:"name"`
	Mandatory   bool     `json:"mandatory" yaml:"mandatory"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enumeration []string `json:"enumeration,omitempty" yaml:"enumeration,omitempty"`
}

func dictViewOf(d *cifdict.Dictionary) dictView {
	var v dictView
	for _, c := range d.Categories() {
		cv := categoryView{Name: c.Name(), Mandatory: c.Mandatory().String()}
		for _, k := range c.Keywords() {
			kv := keywordView{Name: k.Name(), Mandatory: k.Mandatory(), Enumeration: k.Enumeration()}
			if t := k.ItemType(); t != nil {
				kv.Type, kv.Pattern = t.Name(), t.Pattern()
			}
			cv.Keywords = append(cv.Keywords, kv)
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}

func printDictText(w io.Writer, v any) error {
	for _, c := range v.(dictView).Categories {
		fmt.Fprintf(w, "_%s (mandatory: %s)\n", c.Name, c.Mandatory)
		for _, k := range c.Keywords {
			mark := " "
			if k.Mandatory {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s", mark, k.Name)
			if k.Type != "" {
				fmt.Fprintf(w, " <%s>", k.Type)
			}
			if len(k.Enumeration) > 0 {
				fmt.Fprintf(w, " %v", k.Enumeration)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// writeOutput renders v as json or yaml, or through text when given.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer, any) error) error {
	switch format {
	case "json":
		b, err := j.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if text != nil {
			return text(w, v)
		}
	}
	return fmt.Errorf("unknown output format %q", format)
}
