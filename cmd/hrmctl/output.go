package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apiclient "hrmportal/internal/transport/http/client"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes rows under header, or the raw value as JSON when -o json
// was asked for.
func printTable(cmd *cobra.Command, raw any, header []string, rows [][]string) error {
	if output == "json" {
		return printJSON(cmd, raw)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no results")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// saveFile writes a download into dir, or to stdout when dir is "-".
func saveFile(cmd *cobra.Command, file apiclient.File, dir string) error {
	if dir == "-" {
		_, err := cmd.OutOrStdout().Write(file.Data)
		return err
	}
	name := filepath.Base(file.Name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "download"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, file.Data, 0o600); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, len(file.Data))
	return nil
}

// openUpload opens a local file for a multipart upload.
func openUpload(path string) (io.ReadCloser, string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, err
	}
	return f, filepath.Base(path), info.Size(), nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
