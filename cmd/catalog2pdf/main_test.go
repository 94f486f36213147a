package main

// Notes:
// - runMain tests use a fake Converter injected through Environment, so no
//   browser is launched. Rendering against Chromium is covered by the
//   integration tests of the root package.
// - Config is loaded from defaults plus the process environment; these tests
//   assume no CATALOG_* variables are set.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake converter and environment
// ---------------------------------------------------------------------------

type fakeConverter struct {
	mu       sync.Mutex
	inputs   []catalog2pdf.Input
	result   *catalog2pdf.ConvertResult
	err      error
	closed   bool
	closeErr error
}

func (f *fakeConverter) Convert(_ context.Context, input catalog2pdf.Input) (*catalog2pdf.ConvertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &catalog2pdf.ConvertResult{HTML: "<html></html>", PDF: []byte("%PDF-1.4 fake")}, nil
}

func (f *fakeConverter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	conv    *fakeConverter
	created int
}

func newTestEnv(conv *fakeConverter) *testEnv {
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, conv: conv}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewConverter: func(...catalog2pdf.Option) (Converter, error) {
			te.created++
			return te.conv, nil
		},
	}
	return te
}

// writeData writes a product file into a temp dir and returns its path.
func writeData(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

const twoProducts = `{"produtos":[
  {"id":1,"nome":"Caixa Kraft","especificacoes":{"type":"Caixa","size":""}},
  {"id":2,"nome":"Saco de papel"}
]}`

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Command routing
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"catalog2pdf", "version"}, ExitSuccess, "catalog2pdf dev", ""},
		{"help", []string{"catalog2pdf", "help"}, ExitSuccess, "Commands:", ""},
		{"top-level help flag", []string{"catalog2pdf", "--help"}, ExitSuccess, "Commands:", ""},
		{"help generate", []string{"catalog2pdf", "help", "generate"}, ExitSuccess, "--titulo", ""},
		{"generate -h", []string{"catalog2pdf", "generate", "-h"}, ExitSuccess, "--cols", ""},
		{"help serve", []string{"catalog2pdf", "help", "serve"}, ExitSuccess, "/api/gerar-pdf", ""},
		{"unknown command", []string{"catalog2pdf", "bogus"}, ExitUsage, "", "unknown command"},
		{"bad flag", []string{"catalog2pdf", "--nope"}, ExitUsage, "", "invalid flags"},
		{"positional arg", []string{"catalog2pdf", "generate", "extra"}, ExitUsage, "", "unexpected argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(&fakeConverter{})
			code := runMain(tt.args, te.Environment)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, te.stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, te.stderr)
			}
			if te.created != 0 {
				t.Errorf("converter created %d times, want 0", te.created)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Generate - Default command end to end with a fake browser
// ---------------------------------------------------------------------------

func TestRunMain_Generate(t *testing.T) {
	t.Parallel()

	data := writeData(t, "dados.json", twoProducts)
	out := filepath.Join(t.TempDir(), "sub", "catalogo.pdf")
	te := newTestEnv(&fakeConverter{})

	code := runMain([]string{
		"catalog2pdf", "--data", data, "--out", out, "--titulo", "Linha 2025", "--cols", "9",
	}, te.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, te.stderr)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != "%PDF-1.4 fake" {
		t.Errorf("output = %q", got)
	}
	if want := "PDF gerado em: " + out; !strings.Contains(te.stdout.String(), want) {
		t.Errorf("stdout = %q, want %q", te.stdout, want)
	}

	if te.created != 1 || !te.conv.closed {
		t.Errorf("created=%d closed=%v, want one converter closed", te.created, te.conv.closed)
	}
	in := te.conv.inputs[0]
	if in.Title != "Linha 2025" || in.Columns != 4 || len(in.Products) != 2 {
		t.Errorf("input = title %q cols %d products %d", in.Title, in.Columns, len(in.Products))
	}
	if in.Products[0].ID != "1" {
		t.Errorf("first product ID = %q, want numeric id normalized to \"1\"", in.Products[0].ID)
	}
	if _, err := os.Stat(htmlOutputPath(out)); !os.IsNotExist(err) {
		t.Errorf("HTML written without --html")
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_GenerateErrors - Exit codes and messages
// ---------------------------------------------------------------------------

func TestRunMain_GenerateErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing data file", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "dados.json")
		te := newTestEnv(&fakeConverter{})
		code := runMain([]string{"catalog2pdf", "--data", missing}, te.Environment)

		if code != ExitIO {
			t.Errorf("exit code = %d, want %d", code, ExitIO)
		}
		if !strings.Contains(te.stderr.String(), "Arquivo de dados não encontrado: "+missing) {
			t.Errorf("stderr = %q", te.stderr)
		}
		if te.created != 0 {
			t.Error("browser launched for a missing data file")
		}
	})

	t.Run("no products", func(t *testing.T) {
		t.Parallel()

		data := writeData(t, "dados.json", `{"produtos":[]}`)
		te := newTestEnv(&fakeConverter{})
		code := runMain([]string{"catalog2pdf", "--data", data}, te.Environment)

		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		want := `Nenhum produto encontrado em dados.json (esperado array ou campo "produtos")`
		if !strings.Contains(te.stderr.String(), want) {
			t.Errorf("stderr = %q, want %q", te.stderr, want)
		}
		if te.created != 0 {
			t.Error("browser launched for an empty catalog")
		}
	})

	t.Run("browser failure closes converter", func(t *testing.T) {
		t.Parallel()

		data := writeData(t, "dados.json", twoProducts)
		out := filepath.Join(t.TempDir(), "catalogo.pdf")
		if err := os.WriteFile(out, []byte("old"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		te := newTestEnv(&fakeConverter{err: errors.Join(catalog2pdf.ErrBrowserConnect, errors.New("no chrome"))})
		code := runMain([]string{"catalog2pdf", "--data", data, "--out", out}, te.Environment)

		if code != ExitBrowser {
			t.Errorf("exit code = %d, want %d", code, ExitBrowser)
		}
		if !te.conv.closed {
			t.Error("converter not closed after failure")
		}
		if got, _ := os.ReadFile(out); string(got) != "old" {
			t.Errorf("previous output modified: %q", got)
		}
		if !strings.Contains(te.stderr.String(), "failed to connect to browser") {
			t.Errorf("stderr = %q", te.stderr)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		data := writeData(t, "dados.json", twoProducts)
		te := newTestEnv(&fakeConverter{})
		code := runMain([]string{"catalog2pdf", "--data", data, "--timeout", "soon"}, te.Environment)
		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunGenerate_HTMLAndBackup - Optional outputs
// ---------------------------------------------------------------------------

func TestRunGenerate_HTMLAndBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := writeData(t, "dados.yaml", "- id: a\n  nome: Caixa\n")
	out := filepath.Join(dir, "catalogo.pdf")
	backupDir := filepath.Join(dir, "backup")
	if err := os.WriteFile(out, []byte("old"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	te := newTestEnv(&fakeConverter{})
	flags := &generateFlags{
		source:    sourceFlags{data: data},
		out:       out,
		html:      true,
		backupDir: backupDir,
		common:    commonFlags{quiet: true},
	}
	if err := runGenerate(context.Background(), flags, te.Environment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if te.stdout.Len() != 0 {
		t.Errorf("quiet mode printed %q", te.stdout)
	}
	html, err := os.ReadFile(filepath.Join(dir, "catalogo.html"))
	if err != nil || string(html) != "<html></html>" {
		t.Errorf("html output = %q, err %v", html, err)
	}
	entries, err := os.ReadDir(backupDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("backup dir entries = %v, err %v", entries, err)
	}
	if !strings.HasPrefix(entries[0].Name(), "catalogo-") {
		t.Errorf("backup name = %q", entries[0].Name())
	}
	if te.Config.Data.Path != data {
		t.Errorf("env.Config not updated: %q", te.Config.Data.Path)
	}
}

// ---------------------------------------------------------------------------
// TestHTMLOutputPath - Extension swap
// ---------------------------------------------------------------------------

func TestHTMLOutputPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"catalogo.pdf":     "catalogo.html",
		"out/catalogo.pdf": "out/catalogo.html",
		"catalogo":         "catalogo.html",
	}
	for in, want := range tests {
		if got := htmlOutputPath(in); got != want {
			t.Errorf("htmlOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}
