package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

const defaultSheetName = "balance-sheet.xlsx"

func newBalanceSheetCmd() *cobra.Command {
	var (
		baseURL string
		date    string
		userID  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Download the balance sheet workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			body, filename, err := fetchBalanceSheet(ctx, http.DefaultClient, baseURL, date, userID)
			if err != nil {
				return err
			}

			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, len(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:3000", "Base URL of the SplitLedger API")
	cmd.Flags().StringVar(&date, "date", "", "Only include expenses on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&userID, "id", "", "Only include expenses this user participates in")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to the server-provided name)")

	return cmd
}

// fetchBalanceSheet returns the workbook bytes and the file name the server
// suggested.
func fetchBalanceSheet(ctx context.Context, client *http.Client, baseURL, date, userID string) ([]byte, string, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	if userID != "" {
		query.Set("id", userID)
	}

	endpoint := baseURL + "/expense/balance-sheet"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request balance sheet: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code  string `json:"code"`
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			return nil, "", fmt.Errorf("%s: %s (status %d)", apiErr.Code, apiErr.Error, resp.StatusCode)
		}
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, attachmentName(resp.Header.Get("Content-Disposition")), nil
}

func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return defaultSheetName
	}
	return params["filename"]
}
