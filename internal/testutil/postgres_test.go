package testutil

import "testing"

func TestSplitSQLDropsCommentsAndBlanks(t *testing.T) {
	input := "-- header\nCREATE TABLE a (id INT);\n\n  -- note\nCREATE INDEX b ON a (id);\n"
	stmts := splitSQL(stripSQLComments(input))
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INT)" || stmts[1] != "CREATE INDEX b ON a (id)" {
		t.Fatalf("unexpected statements %q", stmts)
	}
}

func TestRepoRootFindsModule(t *testing.T) {
	if _, err := repoRoot(); err != nil {
		t.Fatalf("repo root: %v", err)
	}
}
