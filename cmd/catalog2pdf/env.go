package main

import (
	"context"
	"io"
	"os"
	"time"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/config"
)

// Converter renders one catalog and owns a browser until closed.
type Converter interface {
	Convert(ctx context.Context, input catalog2pdf.Input) (*catalog2pdf.ConvertResult, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*catalog2pdf.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now          func() time.Time
	Stdout       io.Writer
	Stderr       io.Writer
	Config       *config.Config // Effective config of the running command
	NewConverter func(opts ...catalog2pdf.Option) (Converter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
		NewConverter: func(opts ...catalog2pdf.Option) (Converter, error) {
			return catalog2pdf.NewConverter(opts...)
		},
	}
}
