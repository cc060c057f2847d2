package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/infra/gcs"
	"github.com/dvloznov/household-finance/internal/pipeline"
)

func importCmd() *cobra.Command {
	var (
		dryRun bool
		member string
	)
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bank statements (txt, csv, ofx, pdf, gs:// URIs; - reads pasted text from stdin)",
		Long: `Import one or more bank statements into the household ledger.

Each file goes through the structured parsers first and falls back to AI
extraction when no parser recognizes it. Rows matching an existing transaction
(same date, type and amount within a cent) are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			m := s.DefaultMember()
			if member != "" {
				if m, err = domain.ParseMember(member); err != nil {
					return err
				}
			}
			return runImport(cmd, s, args, m, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without saving")
	cmd.Flags().StringVar(&member, "member", "", "member owning the imported rows (Eu, Esposa, Conjunto)")
	return cmd
}

type fileResult struct {
	path   string
	result *pipeline.Result
	err    error
}

func runImport(cmd *cobra.Command, s *session, paths []string, member domain.Member, dryRun bool) error {
	ctx := cmd.Context()
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("A importar extratos"),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]fileResult, 0, len(paths))
	for _, path := range paths {
		var (
			res *pipeline.Result
			err error
		)
		if gcs.IsURI(path) {
			res, err = importObject(cmd, s, path, member, dryRun)
		} else {
			var in pipeline.Input
			if in, err = readInput(cmd.InOrStdin(), path); err == nil {
				in.Member = member
				in.DryRun = dryRun
				res, err = s.Importer.Import(ctx, s.Ledger, in)
			}
		}
		results = append(results, fileResult{path: path, result: res, err: err})
		_ = bar.Add(1)
		if ctx.Err() != nil {
			break
		}
	}
	_ = bar.Finish()

	failed := printImportResults(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(paths))
	}
	return nil
}

// importObject imports a statement already stored in the bucket.
func importObject(cmd *cobra.Command, s *session, uri string, member domain.Member, dryRun bool) (*pipeline.Result, error) {
	if s.Objects == nil {
		return nil, errors.New("gs:// imports need gcs.bucket in config")
	}
	data, err := s.Objects.Fetch(cmd.Context(), uri)
	if err != nil {
		return nil, err
	}
	return s.Importer.Import(cmd.Context(), s.Ledger, pipeline.Input{
		Filename: gcs.FilenameFromURI(uri),
		Data:     data,
		Member:   member,
		DryRun:   dryRun,
	})
}

func readInput(stdin io.Reader, path string) (pipeline.Input, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("reading stdin: %w", err)
		}
		return pipeline.Input{Text: string(data)}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{Filename: filepath.Base(path), Data: data}, nil
}

// printImportResults writes one line per statement and returns how many failed.
func printImportResults(w io.Writer, results []fileResult) int {
	failed := 0
	for _, r := range results {
		name := BoldStyle.Render(r.path)
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s %s %s\n", ErrorStyle.Render("✗"), name, ErrorStyle.Render(r.err.Error()))
			continue
		}
		out := r.result.Outcome
		mark := SuccessStyle.Render("✓")
		if len(out.Accepted) == 0 {
			mark = WarningStyle.Render("•")
		}
		suffix := SubtleStyle.Render(fmt.Sprintf("[%s]", r.result.Parser))
		if r.result.DryRun {
			suffix += SubtleStyle.Render(" (simulação)")
		}
		fmt.Fprintf(w, "%s %s %s %s\n", mark, name, out.Message(), suffix)
	}
	return failed
}
