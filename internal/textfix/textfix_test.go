package textfix

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{"smart quotes", "It’s “quoted”", `It's "quoted"`, 3},
		{"dashes", "a – b — c", "a - b -- c", 2},
		{"ellipsis and nbsp", "wait… here now", "wait... here now", 2},
		{"mojibake apostrophe", "donâ€™t", "don't", 1},
		{"mojibake dash", "a â€“ b", "a - b", 1},
		{"leading BOM", "\uFEFFmode: offline", "mode: offline", 1},
		{"interior BOM", "mode:\uFEFF offline", "mode: offline", 1},
		{"clean input", "nothing to do", "nothing to do", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if count != tt.count {
				t.Errorf("Clean(%q) count = %d, want %d", tt.in, count, tt.count)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	once, _ := Clean("It’s “done”…")
	twice, count := Clean(once)
	if twice != once || count != 0 {
		t.Errorf("second Clean changed output: %q (count %d)", twice, count)
	}
}

func TestFixFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("It’s broken"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	count, err := FixFile(path)
	if err != nil {
		t.Fatalf("FixFile: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	fixed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixed: %v", err)
	}
	if string(fixed) != "It's broken" {
		t.Errorf("fixed content = %q", fixed)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "It’s broken" {
		t.Errorf("backup content = %q, want original", backup)
	}
}

func TestFixFileCleanInputUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.txt")
	if err := os.WriteFile(path, []byte("all good"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	count, err := FixFile(path)
	if err != nil {
		t.Fatalf("FixFile: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("no backup should be written for a clean file")
	}
}

func TestFixFileMissing(t *testing.T) {
	if _, err := FixFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
