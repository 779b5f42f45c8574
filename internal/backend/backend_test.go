package backend

import (
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"sqlite with path", Config{Type: SQLite, SQLiteDBPath: "/tmp/x.db"}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"unknown type", Config{Type: "postgres"}, true},
		{"empty type", Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenMemory(t *testing.T) {
	res, err := Open(Config{Type: Memory}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if res.Store == nil {
		t.Fatal("Open() returned nil store")
	}
	if res.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}
}

func TestOpenSQLite(t *testing.T) {
	res, err := Open(Config{Type: SQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "test.db")}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if res.Store == nil || res.Cleanup == nil {
		t.Fatal("Open() should return store and cleanup for sqlite")
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}
