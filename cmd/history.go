package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/export"
	"github.com/iksnae/tgsum/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
	historyOutput string
)

// historyCmd groups the history subcommands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously generated summaries",
	Long: `Summaries are recorded in a local SQLite database (history.path in the settings file).
Identical requests reuse a recorded summary unless summarize is run with --no-cache.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded summaries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Store) error {
			records, err := store.List(commandContext(cmd), historyLimit)
			if err != nil {
				return err
			}
			displayRecords(records)
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded summary",
	Long:  `Show a recorded summary. The id may be shortened to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(historyFormat)
		if err != nil {
			return err
		}
		return withHistory(func(store *history.Store) error {
			rec, err := store.Get(commandContext(cmd), args[0])
			if err != nil {
				return historyError(args[0], err)
			}
			if rec.Report == nil {
				return fmt.Errorf("summary %s has an unreadable report; delete it with `tgsum history delete %s`", shortID(rec.ID), shortID(rec.ID))
			}
			var buf bytes.Buffer
			if err := exporter.Export(rec.Report, &buf); err != nil {
				return &internal.ExportError{Format: historyFormat, Path: historyOutput, Err: err}
			}
			return internal.WriteOutput(buf.String(), historyOutput, historyFormat, export.IsMarkdown(historyFormat))
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a recorded summary",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Store) error {
			ctx := commandContext(cmd)
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return historyError(args[0], err)
			}
			if err := store.Delete(ctx, rec.ID); err != nil {
				return err
			}
			internal.PrintSuccess("Deleted summary " + shortID(rec.ID))
			return nil
		})
	},
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withHistory opens the history store for the duration of fn
func withHistory(fn func(store *history.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("history is disabled (set history.enabled in the settings file)")
	}
	defer store.Close()
	return fn(store)
}

func historyError(id string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("no summary with id %q", id)
	case errors.Is(err, history.ErrAmbiguous):
		return fmt.Errorf("id %q matches more than one summary, use a longer prefix", id)
	}
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func displayRecords(records []*history.Record) {
	if len(records) == 0 {
		fmt.Println(headerStyle.Render("🗂  No summaries recorded yet"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("🗂  %d recorded summar%s", len(records), pluralSuffix(len(records), "y", "ies"))))
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Chat")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Model")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, rec := range records {
		title := rec.ChatTitle
		if title == "" {
			title = fmt.Sprintf("%d", rec.ChatID)
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(rec.ID)),
			title,
			countStyle.Render(humanize.Comma(int64(rec.MessageCount))),
			rec.Model,
			dateStyle.Render(humanize.Time(rec.CreatedAt)),
		)
	}
	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use `tgsum history show <id>` to view a summary"))
}

func pluralSuffix(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of summaries to list (0 for all)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format: text, markdown, json, yaml, jsonl")
	historyShowCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write the summary to this file instead of stdout")
}
