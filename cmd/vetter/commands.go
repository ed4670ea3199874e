package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/eligibility"
	"github.com/JaimeStill/vetter/internal/outcomes"
	"github.com/JaimeStill/vetter/pkg/pagination"
)

func classifyCmd(opts *options) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "classify [submission.json]",
		Short: "Classify a submission read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive && len(args) == 0 {
				return fmt.Errorf("--interactive reads answers from stdin; pass the submission as a file")
			}

			sub, err := readSubmission(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			sys, closeStore, err := opts.system()
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := sys.Classify(cmd.Context(), sub)
			if err != nil {
				return err
			}

			if p, ok := res.Decision.(eligibility.Pending); ok && interactive {
				answers, err := prompt(cmd.InOrStdin(), cmd.OutOrStdout(), p.Questions)
				if err != nil {
					return err
				}
				res, err = sys.Respond(cmd.Context(), eligibility.RespondRequest{
					InitialData: sub,
					Questions:   p.Questions,
					Answers:     answers,
				})
				if err != nil {
					return err
				}
			}

			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "answer clarifying questions on stdin")
	return cmd
}

func respondCmd(opts *options) *cobra.Command {
	var (
		questions []string
		answers   []string
	)

	cmd := &cobra.Command{
		Use:   "respond [submission.json]",
		Short: "Submit answers to a clarification round",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			sys, closeStore, err := opts.system()
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := sys.Respond(cmd.Context(), eligibility.RespondRequest{
				InitialData: sub,
				Questions:   questions,
				Answers:     answers,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringArrayVarP(&questions, "question", "q", nil, "question asked in the previous round (repeatable)")
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer, in question order (repeatable)")
	cmd.MarkFlagRequired("answer")
	return cmd
}

func catalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect rule catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.catalog(nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), eligibility.CatalogInfo{
				Version: c.Version,
				Hash:    c.Hash(),
				Rules:   c,
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <catalog.yaml>",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok  version=%s  hash=%s\n", c.Version, c.Hash())
			return nil
		},
	})

	return cmd
}

func outcomesCmd(opts *options) *cobra.Command {
	var (
		page     int
		pageSize int
		category string
		search   string
	)

	cmd := &cobra.Command{
		Use:   "outcomes",
		Short: "Query recorded outcomes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accepted outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(opts.configPath)
			if err != nil {
				return err
			}

			store, closeStore, err := opts.store(cfg, opts.logger())
			if err != nil {
				return err
			}
			defer closeStore()

			req := pagination.PageRequest{Page: page, PageSize: pageSize}
			if search != "" {
				req.Search = &search
			}
			var filters outcomes.Filters
			if category != "" {
				filters.Category = &category
			}

			result, err := store.List(cmd.Context(), req, filters)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Data) == 0 {
				fmt.Fprintln(out, "No outcomes recorded.")
				return nil
			}
			for _, o := range result.Data {
				fmt.Fprintf(out, "%s  %-12s  %-30s  %s\n",
					o.ID.String()[:8],
					o.Category,
					truncate(o.ProductName, 30),
					o.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			fmt.Fprintf(out, "page %d of %d (%d total)\n", result.Page, result.TotalPages, result.Total)
			if result.HasNext() {
				fmt.Fprintf(out, "next: --page %d\n", result.Page+1)
			}
			return nil
		},
	}

	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVarP(&pageSize, "limit", "n", 20, "outcomes per page")
	list.Flags().StringVar(&category, "category", "", "filter by category")
	list.Flags().StringVar(&search, "search", "", "search product and company names")

	cmd.AddCommand(list)
	return cmd
}

func readSubmission(stdin io.Reader, args []string) (eligibility.Submission, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return eligibility.Submission{}, fmt.Errorf("read submission: %w", err)
	}

	var sub eligibility.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return eligibility.Submission{}, fmt.Errorf("parse submission: %w", err)
	}
	return sub, nil
}

func prompt(in io.Reader, out io.Writer, questions []string) ([]string, error) {
	scanner := bufio.NewScanner(in)
	answers := make([]string, 0, len(questions))

	for i, q := range questions {
		fmt.Fprintf(out, "Q%d: %s\n> ", i+1, q)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}
		answers = append(answers, strings.TrimSpace(scanner.Text()))
	}
	return answers, nil
}

// printResult writes the decision and returns an error for a failed one so
// the process exits non-zero.
func printResult(w io.Writer, res *eligibility.Result) error {
	if err := writeJSON(w, res); err != nil {
		return err
	}
	if f, ok := res.Decision.(eligibility.Failed); ok {
		return eligibility.Cause(f.Cause)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

