package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/JaimeStill/vetter/migrations"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	up := map[string]bool{}
	down := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			up[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			down[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(up) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range up {
		if !down[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
	for v := range down {
		if !up[v] {
			t.Errorf("migration %s has no up file", v)
		}
	}
}
