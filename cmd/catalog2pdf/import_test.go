package main

// Notes:
// - These tests replace the package-level openImporter, so they do not run
//   in parallel. The real PostgreSQL import is covered by the store
//   integration tests.

import (
	"context"
	"errors"
	"strings"
	"testing"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
)

type fakeImporter struct {
	got    []catalog2pdf.Product
	err    error
	closed bool
}

func (f *fakeImporter) Import(_ context.Context, products []catalog2pdf.Product) error {
	f.got = products
	return f.err
}

func (f *fakeImporter) Close() error {
	f.closed = true
	return nil
}

func stubImporter(t *testing.T, imp *fakeImporter) *string {
	t.Helper()
	var dsn string
	orig := openImporter
	openImporter = func(_ context.Context, d string) (productImporter, error) {
		dsn = d
		return imp, nil
	}
	t.Cleanup(func() { openImporter = orig })
	return &dsn
}

// ---------------------------------------------------------------------------
// TestRunImport - Product file to PostgreSQL
// ---------------------------------------------------------------------------

func TestRunImport(t *testing.T) {
	t.Run("imports in file order", func(t *testing.T) {
		imp := &fakeImporter{}
		dsn := stubImporter(t, imp)
		data := writeData(t, "dados.json", twoProducts)
		te := newTestEnv(&fakeConverter{})

		code := runMain([]string{"catalog2pdf", "import", "--data", data, "--postgres-dsn", "postgres://x"}, te.Environment)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
		}
		if *dsn != "postgres://x" {
			t.Errorf("dsn = %q", *dsn)
		}
		if len(imp.got) != 2 || imp.got[0].Nome != "Caixa Kraft" || !imp.closed {
			t.Errorf("imported %+v closed=%v", imp.got, imp.closed)
		}
		if !strings.Contains(te.stdout.String(), "2 produtos importados") {
			t.Errorf("stdout = %q", te.stdout)
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		stubImporter(t, &fakeImporter{})
		te := newTestEnv(&fakeConverter{})

		err := runImport(context.Background(), &importFlags{data: "dados.json"}, te.Environment)
		if !errors.Is(err, ErrMissingDSN) {
			t.Errorf("error = %v, want ErrMissingDSN", err)
		}
	})

	t.Run("import failure", func(t *testing.T) {
		imp := &fakeImporter{err: catalog2pdf.ErrDuplicateID}
		stubImporter(t, imp)
		data := writeData(t, "dados.json", twoProducts)
		te := newTestEnv(&fakeConverter{})

		code := runMain([]string{"catalog2pdf", "import", "--data", data, "--postgres-dsn", "postgres://x"}, te.Environment)
		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !imp.closed {
			t.Error("importer not closed")
		}
	})
}
