package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slabworks/slabdesk-backend/pkg/migrate"
)

func TestSubmissionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_submissions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no submissions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS submissions",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_code",
		"CREATE TABLE IF NOT EXISTS cards",
		"FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE",
		"CHECK (card_count >= 0)",
		"DROP TABLE IF EXISTS cards",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestGroupMigrationEnforcesDensePositions(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_grading_groups.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no grading groups migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_position ON group_members (group_id, position)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_submission ON group_members (submission_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_group_cards_no ON group_cards (group_id, card_no)",
		"FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE RESTRICT",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
