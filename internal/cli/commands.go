package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/admin"
	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/events"
	"github.com/rpattn/adminkit/internal/export"
	"github.com/rpattn/adminkit/internal/ingestion"
	"github.com/rpattn/adminkit/internal/listview"
	"github.com/rpattn/adminkit/internal/provider"
	"github.com/rpattn/adminkit/internal/query"
	"github.com/rpattn/adminkit/internal/wizard"
)

func newResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the configured resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tURL\tWIZARDS")
			for _, a := range app.Registry.Listed() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Title(), a.URL, strings.Join(a.WizardNames(), ","))
			}
			return tw.Flush()
		},
	}
}

// parseFilters turns name[__op]=value flags into filters.
func parseFilters(raw []string) ([]domain.Filter, error) {
	filters := make([]domain.Filter, 0, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", kv)
		}
		name, op := query.ParseKey(key)
		filters = append(filters, domain.Filter{Name: name, Value: value, Operation: op})
	}
	return filters, nil
}

func newState(a *admin.Admin, raw []string) (*listview.State, error) {
	filters, err := parseFilters(raw)
	if err != nil {
		return nil, err
	}
	return listview.New(a.URL, append(append([]domain.Filter{}, a.ListFilters...), filters...)...), nil
}

func columnsOf(a *admin.Admin, records []domain.Record) []domain.Column {
	if len(a.ListFields) > 0 {
		return a.ListFields
	}
	if len(records) == 0 {
		return []domain.Column{{Header: "id", Accessor: "id"}}
	}
	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	columns := make([]domain.Column, len(keys))
	for i, k := range keys {
		columns[i] = domain.Column{Header: k, Accessor: k}
	}
	return columns
}

func newListCommand() *cobra.Command {
	var (
		filters []string
		page    int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Show one page of a resource",
		Example: `  adminctl list patients
  adminctl list patients --filter last_name__icontains=doe --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.Registry.Get(args[0])
			if err != nil {
				return err
			}
			state, err := newState(a, filters)
			if err != nil {
				return err
			}
			state.SetPage(page)
			if err := state.Refresh(cmd.Context(), a.Provider); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(state.Records())
			}
			if err := writeTable(out, columnsOf(a, state.Records()), state.Records()); err != nil {
				return err
			}
			pagination, _ := state.Pagination()
			fmt.Fprintf(out, "page %d of %d (%d records)\n", state.Page(), state.PageCount(), pagination.Count)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as name[__op]=value, repeatable")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func writeTable(w io.Writer, columns []domain.Column, records []domain.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(export.Header(c))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, record := range records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = export.Cell(record, c.Accessor)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func newWizardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard <resource> <wizard> [transition...]",
		Short: "Walk a resource wizard through transitions",
		Example: `  adminctl wizard patients onboarding forward forward
  adminctl wizard patients onboarding forward backward`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.Registry.Get(args[0])
			if err != nil {
				return err
			}
			w, err := a.Wizard(args[1])
			if err != nil {
				return err
			}

			session := wizard.NewSession(w, a.Name,
				wizard.WithLogger(app.Logger),
				wizard.WithNotifier(events.NewLogNotifier(app.Logger)),
				wizard.WithAnalytics(events.NewLogAnalytics(app.Logger)),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", w.Title())
			printStep(out, session)
			for _, transition := range args[2:] {
				if _, ok := w.Lookup(session.Current(), transition); !ok {
					fmt.Fprintf(out, "  %q has no transition %q, staying\n", session.Current(), transition)
				}
				session.Fire(transition)
				printStep(out, session)
			}
			if session.Done() {
				fmt.Fprintln(out, "done")
			}
			return nil
		},
	}
}

func printStep(out io.Writer, s *wizard.Session) {
	step := s.Step()
	fmt.Fprintf(out, "[%s] %s\n", s.Current(), step.ResourceName)
	for _, widget := range step.Widgets {
		marker := ""
		if widget.Required {
			marker = " *"
		}
		fmt.Fprintf(out, "  - %s%s\n", widget.Name, marker)
	}
}

func newExportCommand() *cobra.Command {
	var (
		filters []string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export every page of a resource to XLSX or CSV",
		Example: `  adminctl export patients --out patients.xlsx
  adminctl export patients --filter doctor=2 --out patients.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.Registry.Get(args[0])
			if err != nil {
				return err
			}
			state, err := newState(a, filters)
			if err != nil {
				return err
			}

			var records []domain.Record
			for {
				if err := state.Refresh(cmd.Context(), a.Provider); err != nil {
					return err
				}
				records = append(records, state.Records()...)
				if !state.CanNextPage() {
					break
				}
				state.SetPage(state.Page() + 1)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()

			columns := columnsOf(a, records)
			switch strings.ToLower(filepath.Ext(outPath)) {
			case ".csv":
				err = export.WriteCSV(f, columns, records)
			default:
				err = export.WriteXLSX(f, a.Title(), columns, records)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as name[__op]=value, repeatable")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.xlsx or .csv)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newImportCommand() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:     "import <resource>",
		Short:   "Create records from an XLSX or CSV file",
		Example: `  adminctl import patients --in patients.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.Registry.Get(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", inPath, err)
			}
			defer f.Close()

			records, err := ingestion.Read(inPath, f, a.ListFields)
			if err != nil {
				return err
			}

			var errs error
			created := 0
			for i, record := range records {
				if _, err := a.Provider.Create(cmd.Context(), a.URL, record); err != nil {
					app.Logger.Warn("import row rejected", zap.Int("row", i+1), zap.Error(err))
					errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i+1, describe(err)))
					continue
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d records\n", created, len(records))
			return errs
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input file (.xlsx or .csv)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// describe expands field errors so every rejected field is reported.
func describe(err error) error {
	var validationErr *provider.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}
	messages := make([]string, 0, len(validationErr.Fields))
	for _, field := range sortedFields(validationErr.Fields) {
		messages = append(messages, field+": "+strings.Join(validationErr.Fields[field], " "))
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(messages, "; "))
}

func sortedFields(fields map[string][]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
