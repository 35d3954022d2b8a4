//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_MirrorRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	now := time.Now().UTC()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Kind:        core.KindExpense,
		Title:       "Integration Test Expense",
		Amount:      core.MoneyFromInt(12),
		Category:    "other",
		Description: "written by the integration test",
		Date:        core.NewDate(now.Year(), int(now.Month()), now.Day()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("Failed to upsert row: %v", err)
	}
	tx.Title = "Integration Test Expense (updated)"
	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("Failed to overwrite row: %v", err)
	}

	refs, err := client.Refs(ctx)
	if err != nil {
		t.Fatalf("Failed to list refs: %v", err)
	}
	found := 0
	for _, r := range refs {
		if r.ID == tx.ID {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one row for %s, found %d", tx.ID, found)
	}

	if err := client.Remove(ctx, tx.Kind, tx.ID); err != nil {
		t.Fatalf("Failed to remove row: %v", err)
	}
}
