package core

import (
	"fmt"
	"strings"
)

type Backend string

const (
	HeapBackend   Backend = "heap"
	CallocBackend Backend = "calloc"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case HeapBackend:
		return HeapBackend, nil
	case CallocBackend:
		return CallocBackend, nil
	}
	return "", fmt.Errorf("%w: unknown backend %q", ErrInvalidArgument, s)
}

type Config struct {
	Rows     int
	Cols     int
	Backend  Backend
	MaxBytes uint64
	Dense    bool
}

func DefaultConfig() *Config {
	return &Config{
		Rows:    4,
		Cols:    5,
		Backend: HeapBackend,
	}
}

func (cfg *Config) Validate() error {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidArgument, cfg.Rows, cfg.Cols)
	}
	if _, err := ParseBackend(string(cfg.Backend)); err != nil {
		return err
	}
	return nil
}

// NewAllocator builds the allocator the config names.
func (cfg *Config) NewAllocator() (Allocator, error) {
	backend, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}
	if backend == CallocBackend {
		return NewCallocAllocator(cfg.MaxBytes, "rowmatrix"), nil
	}
	return NewHeapAllocator(cfg.MaxBytes), nil
}
