package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
)

// Options controls one assembly run: where the image starts, whether
// sections get page-aligned apart, which symbol is the entry point, and
// how chatty the run is. Defaults come from DefaultOptions, are
// overridden by a TOML config file if one is given, and finally by
// environment variables, in that order.
type Options struct {
	Base            uint64 `toml:"base"`
	PageSeparate    bool   `toml:"page_separate"`
	Entry           string `toml:"entry"`
	OSABI           byte   `toml:"osabi"`
	Verbose         bool   `toml:"verbose"`
	Debug           bool   `toml:"debug"`
}

func DefaultOptions() Options {
	return Options{
		Base:         0x100000,
		PageSeparate: true,
		Entry:        "_start",
	}
}

// LoadConfig reads path (if non-empty) as a TOML file on top of
// DefaultOptions, then applies RVASM_* environment overrides.
func LoadConfig(path string) (Options, error) {
	opts := DefaultOptions()
	if path != "" {
		if _, err := toml.DecodeFile(path, &opts); err != nil {
			return opts, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&opts)
	return opts, nil
}

func applyEnvOverrides(opts *Options) {
	if v := env.Str("RVASM_ENTRY"); v != "" {
		opts.Entry = v
	}
	if env.Has("RVASM_BASE") {
		opts.Base = uint64(env.Int64("RVASM_BASE", int64(opts.Base)))
	}
	if env.Has("RVASM_NO_PAGE_SEPARATION") {
		opts.PageSeparate = !env.Bool("RVASM_NO_PAGE_SEPARATION")
	}
	if env.Bool("RVASM_VERBOSE") {
		opts.Verbose = true
	}
	if env.Bool("RVASM_DEBUG") {
		opts.Debug = true
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
