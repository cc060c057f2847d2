package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/infra/gcs"
)

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload statements to the configured bucket and print their gs:// URIs",
		Long: `Upload statement files to the configured GCS bucket under
statements/<household>/<yyyy-mm>/. The printed URIs can be imported later with
"finance import gs://..." or queued through the API.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.Objects == nil {
				return errors.New("upload needs gcs.bucket in config")
			}
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				contentType := mime.TypeByExtension(filepath.Ext(path))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				object := gcs.ObjectName(s.Config.Household.ID, filepath.Base(path), time.Now())
				uri, err := s.Objects.Upload(cmd.Context(), object, f, contentType)
				f.Close()
				if err != nil {
					return fmt.Errorf("uploading %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
			}
			return nil
		},
	}
}
