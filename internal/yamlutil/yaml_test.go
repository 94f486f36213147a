package yamlutil_test

// Notes:
// - TestInputSizeLimit mutates the package-level MaxInputSize, so it does
//   not run in parallel with the other tests.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-catalog2pdf/internal/yamlutil"
)

type renderSettings struct {
	Titulo string `yaml:"titulo"`
	Cols   int    `yaml:"cols"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{name: "valid", data: []byte("titulo: Catálogo\ncols: 3"), dest: &renderSettings{}},
		{name: "unknown field ignored", data: []byte("titulo: X\nextra: 1"), dest: &renderSettings{}},
		{name: "nil data", data: nil, dest: &renderSettings{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("cols: 1"), dest: nil, wantErr: yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Unknown fields rejected
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var ok renderSettings
	if err := yamlutil.UnmarshalStrict([]byte("titulo: Linha 2025\ncols: 2"), &ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.Titulo != "Linha 2025" || ok.Cols != 2 {
		t.Errorf("got %+v", ok)
	}

	var bad renderSettings
	err := yamlutil.UnmarshalStrict([]byte("titulo: X\ncolunas: 2"), &bad)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error should carry package prefix, got %q", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Block style output
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(renderSettings{Titulo: "Catálogo", Cols: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var back renderSettings
	if err := yamlutil.UnmarshalStrict(data, &back); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if back.Titulo != "Catálogo" || back.Cols != 2 {
		t.Errorf("round trip = %+v", back)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - MaxInputSize enforcement
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	yamlutil.MaxInputSize = 16
	var dest renderSettings
	err := yamlutil.Unmarshal([]byte("titulo: "+strings.Repeat("x", 32)), &dest)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}

	err = yamlutil.Unmarshal([]byte("cols: 1"), &dest)
	if err != nil {
		t.Errorf("input under limit: unexpected error: %v", err)
	}
}
