package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQuoteLineItemsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quote_line_items.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no quote line items migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS quote_line_items",
		"FOREIGN KEY (quote_request_id) REFERENCES quote_requests(id) ON DELETE CASCADE",
		"CHECK (qty >= 1)",
		"DROP TABLE IF EXISTS quote_line_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestQuoteRequestsMigrationHasSessionIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quote_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no quote requests migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "idx_quote_requests_session_id") {
		t.Error("missing session id index")
	}
}
