package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInvoicesMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_invoices.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no invoices migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS invoices",
		"CREATE TABLE IF NOT EXISTS invoice_items",
		"CREATE TABLE IF NOT EXISTS invoice_submissions",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_items_key ON invoice_items (invoice_id, item_id, kind)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_submissions_key ON invoice_submissions (invoice_id, submission_id)",
		"CHECK (total_cents >= 0)",
		"DROP TABLE IF EXISTS invoices",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
