package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "equal split assigns residue to first participant",
			args: []string{"split", "--amount", "100", "--participant", "1", "--participant", "2", "--participant", "3"},
			want: []string{"1                33.334", "2                33.333", "3                33.333", "TOTAL            100.000"},
		},
		{
			name: "percentage split",
			args: []string{"split", "--amount", "200", "--method", "percentage", "--participant", "1=25", "--participant", "2=75"},
			want: []string{"1                50.000", "2                150.000"},
		},
		{
			name: "exact split",
			args: []string{"split", "--amount", "10.5", "--method", "EXACT", "--participant", "4=10", "--participant", "5=0.5"},
			want: []string{"4                10.000", "5                0.500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, line := range tt.want {
				assert.Contains(t, out, line)
			}
		})
	}
}

func TestSplitCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "bad amount", args: []string{"split", "--amount", "1.2345", "--participant", "1"}, wantErr: domain.ErrMoneyFormat},
		{name: "bad method", args: []string{"split", "--amount", "10", "--method", "shares", "--participant", "1"}, wantErr: domain.ErrInvalidSplitMethod},
		{name: "duplicate participant", args: []string{"split", "--amount", "10", "--participant", "1", "--participant", "1"}, wantErr: domain.ErrDuplicateParticipants},
		{name: "bad participant id", args: []string{"split", "--amount", "10", "--participant", "abc"}, wantErr: domain.ErrInvalidParticipantID},
		{
			name:    "percentages not adding up",
			args:    []string{"split", "--amount", "10", "--method", "percentage", "--participant", "1=40", "--participant", "2=40"},
			wantErr: domain.ErrInvalidPercentageTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBalanceSheetCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/expense/balance-sheet", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("date"))
		assert.Equal(t, "3", r.URL.Query().Get("id"))
		w.Header().Set("Content-Disposition", "attachment; filename=balance-sheet-for-2024-06-01.xlsx")
		_, _ = w.Write([]byte("workbook"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "balance-sheet", "--url", srv.URL, "--date", "2024-06-01", "--id", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "balance-sheet-for-2024-06-01.xlsx")

	body, err := os.ReadFile(filepath.Join(dir, "balance-sheet-for-2024-06-01.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(body))
}

func TestBalanceSheetCommandAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"INVALID_DATE_FORMAT","error":"Invalid date format"}`))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "sheet.xlsx")
	_, err := execute(t, "balance-sheet", "--url", srv.URL, "--date", "01-06-2024", "--out", out)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "INVALID_DATE_FORMAT"), err.Error())
	assert.NoFileExists(t, out)
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "balance-sheet-for-2024-06-01.xlsx", attachmentName("attachment; filename=balance-sheet-for-2024-06-01.xlsx"))
	assert.Equal(t, "x.xlsx", attachmentName(`attachment; filename="x.xlsx"`))
	assert.Equal(t, defaultSheetName, attachmentName(""))
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "up")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
