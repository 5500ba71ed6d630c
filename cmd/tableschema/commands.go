package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ts "github.com/reoring/tableschema"
	"github.com/reoring/tableschema/codec"
	"github.com/reoring/tableschema/infer"
	"github.com/reoring/tableschema/internal/config"
	"github.com/reoring/tableschema/internal/csvsource"
)

type globals struct {
	envFile  string
	logLevel string
	log      *logrus.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "tableschema",
		Short: "Infer, validate and apply Table Schema documents",
		Long: `tableschema works with Table Schema documents.

Schemas can be inferred from CSV samples, validated, and used to cast CSV
rows into typed values. Settings may also come from TABLESCHEMA_* variables
or a .env file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.log = config.SetupLogging(g.logLevel)
			g.log.SetOutput(cmd.ErrOrStderr())
			config.LoadEnv(g.envFile, g.log)
		},
	}
	root.PersistentFlags().StringVarP(&g.envFile, "env-file", "e", ".env", "Path to .env file")
	root.PersistentFlags().StringVarP(&g.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newInferCmd(g), newValidateCmd(g), newCastCmd(g))
	return root
}

func newInferCmd(g *globals) *cobra.Command {
	var (
		rowLimit int
		asYAML   bool
		missing  []string
		comma    string
	)
	cmd := &cobra.Command{
		Use:   "infer <data.csv|data.json>",
		Short: "Infer a schema from a CSV or JSON rows sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("row-limit") {
				rowLimit = config.Int("ROW_LIMIT", rowLimit)
			}
			tab, err := csvsource.ReadPath(args[0], csvsource.Options{Comma: delimiter(comma)})
			if err != nil {
				return err
			}
			c := codec.JSON(codec.JSONOptions{Indent: "  "})
			if asYAML || config.String("FORMAT", "") == "yaml" {
				c = codec.YAML()
			}
			opt := infer.Options{RowLimit: rowLimit, Codec: c, Logger: g.log}
			if cmd.Flags().Changed("missing") {
				opt.MissingValues = missing
			}
			s, err := infer.Infer(tab.Values(), tab.Headers, opt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := s.WriteDocument(out); err != nil {
				return err
			}
			if c.Name() == "json" {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rowLimit, "row-limit", "n", 0, "Sample at most this many rows (0 samples all)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the schema as YAML")
	cmd.Flags().StringSliceVar(&missing, "missing", nil, "Missing value tokens")
	cmd.Flags().StringVarP(&comma, "delimiter", "d", ",", "CSV field delimiter")
	return cmd
}

func newValidateCmd(g *globals) *cobra.Command {
	var (
		lenient    bool
		jsonSchema bool
	)
	cmd := &cobra.Command{
		Use:   "validate <schema.json|schema.yaml>",
		Short: "Validate a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lenient") {
				lenient = config.Bool("LENIENT", lenient)
			}
			mode := ts.Strict
			if lenient {
				mode = ts.Lenient
			}
			s, err := loadSchema(args[0], mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			// lenient parsing already recorded every violation
			if errs := s.Errors(); len(errs) > 0 {
				for _, it := range errs {
					fmt.Fprintln(out, it.String())
				}
				return fmt.Errorf("%s: %d issue(s)", args[0], len(errs))
			}
			g.log.WithField("fields", len(s.Fields())).Info("schema is valid")
			if jsonSchema {
				enc := gojson.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s.RowJSONSchema())
			}
			fmt.Fprintln(out, "valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Collect every issue instead of stopping at the first")
	cmd.Flags().BoolVar(&jsonSchema, "jsonschema", false, "Print the JSON Schema of a data row")
	return cmd
}

func newCastCmd(g *globals) *cobra.Command {
	var comma string
	cmd := &cobra.Command{
		Use:   "cast <schema> <data.csv|data.json>",
		Short: "Cast CSV or JSON rows with a schema and print them as JSON lines",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(args[0], ts.Strict)
			if err != nil {
				return err
			}
			tab, err := csvsource.ReadPath(args[1], csvsource.Options{Comma: delimiter(comma)})
			if err != nil {
				return err
			}
			rows, err := s.CastRows(tab.Rows)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			if err := writeRows(w, s, rows); err != nil {
				return err
			}
			g.log.WithField("rows", len(rows)).Debug("rows cast")
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&comma, "delimiter", "d", ",", "CSV field delimiter")
	return cmd
}

func loadSchema(path string, mode ts.Mode) (*ts.Schema, error) {
	c, err := codec.ForName(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if c.Name() == "json" {
		c = codec.JSON(codec.JSONOptions{RejectDuplicateKeys: true, SanitizeQuotes: true})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ts.ReadSchema(f, ts.SchemaOpt{Mode: mode, Codec: c})
}

// writeRows prints one JSON object per row. Values JSON can carry natively
// are kept, everything else is written in its canonical text form.
func writeRows(w io.Writer, s *ts.Schema, rows [][]any) error {
	fields := s.Fields()
	for _, row := range rows {
		obj := make(map[string]any, len(fields))
		for i, f := range fields {
			v, err := jsonCell(f, row[i])
			if err != nil {
				return err
			}
			obj[f.Name()] = v
		}
		b, err := gojson.Marshal(obj)
		if err != nil {
			return err
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func jsonCell(f *ts.Field, v any) (any, error) {
	switch x := v.(type) {
	case nil, int64, bool, string, map[string]any, []any:
		return v, nil
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return v, nil
		}
	}
	return f.FormatValue(v)
}

func delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}
