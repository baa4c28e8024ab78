package errors

import "testing"

func TestNewCodeValidation(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"table.not_found", false},
		{"iceberg.commit_conflict", false},
		{"Table.NotFound", true},  // must be lowercase
		{"tablenotfound", true},   // missing package separator
		{"table.error", true},     // "error" is banned
		{"table.has_err_code", true},
	}

	for _, tc := range cases {
		_, err := NewCode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("NewCode(%q): wantErr=%v, got err=%v", tc.in, tc.wantErr, err)
		}
	}
}

func TestCodePackageAndName(t *testing.T) {
	c := MustNewCode("table.commit_conflict")
	if c.Package() != "table" {
		t.Errorf("expected package 'table', got %q", c.Package())
	}
	if c.Name() != "commit_conflict" {
		t.Errorf("expected name 'commit_conflict', got %q", c.Name())
	}
}

func TestMustNewCodePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid code")
		}
	}()
	MustNewCode("Invalid Code")
}
