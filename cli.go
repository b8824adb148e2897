package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagBase         uint64
	flagNoPageSep    bool
	flagEntry        string
	flagConfig       string
	flagVerbose      bool
	flagDebug        bool
)

// newRootCmd wires the assembler up as a single cobra command taking
// one or more input files and a single output path; per spec.md §6 it
// writes four sibling files from that one path: the plain ELF64 object,
// an explicit outfile64, a widened outfile128, and a raw outfile.bin.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rvasm infile... outfile",
		Short: "Two-pass RISC-V assembler",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			infiles := args[:len(args)-1]
			outfile := args[len(args)-1]
			return runAssemble(infiles, outfile)
		},
	}
	cmd.Flags().Uint64Var(&flagBase, "base", 0, "base address of the first section (overrides config/default)")
	cmd.Flags().BoolVar(&flagNoPageSep, "no-page-separation", false, "pack sections back to back with no page alignment")
	cmd.Flags().StringVar(&flagEntry, "entry", "", "name of the entry-point symbol")
	cmd.Flags().StringVar(&flagConfig, "config", "", "path to a TOML config file")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each section switch and label definition")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "dump token stream, sections and symbol table")
	return cmd
}

func runAssemble(infiles []string, outfile string) error {
	opts, err := LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagBase != 0 {
		opts.Base = flagBase
	}
	if flagNoPageSep {
		opts.PageSeparate = false
	}
	if flagEntry != "" {
		opts.Entry = flagEntry
	}
	if flagVerbose {
		opts.Verbose = true
	}
	if flagDebug {
		opts.Debug = true
	}

	var tokens []Token
	for _, path := range infiles {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		toks, err := Classify(Split(string(raw)))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		tokens = append(tokens, toks...)
	}

	d := NewDriver(tokens, opts)
	if opts.Debug {
		dumpTokens(tokens)
	}
	if err := d.Run(); err != nil {
		return err
	}
	resolved, err := d.Finish(AddressFromUint64(opts.Base), opts.PageSeparate)
	if err != nil {
		return err
	}
	if opts.Debug {
		dumpSections(d.Sections())
		dumpSymbols(d.Symbols(), resolved)
	}

	entryAddr, ok := resolved[opts.Entry]
	if !ok {
		entryAddr = AddressFromUint64(opts.Base)
	}

	global := make(map[string]bool)
	types := make(map[string]uint32)
	sizes := make(map[string]uint32)
	for _, name := range d.Symbols().Names() {
		loc, _ := d.Symbols().Lookup(name)
		if loc.Global {
			global[name] = true
		}
		types[name] = loc.Type
		sizes[name] = loc.Size
	}

	img := ObjectImage{
		Sections: d.Sections().All(),
		Bases:    d.pendingBases,
		Symbols:  resolved,
		Global:   global,
		Types:    types,
		Sizes:    sizes,
		Entry:    entryAddr,
		OSABI:    opts.OSABI,
	}

	if err := os.WriteFile(outfile, BuildELF64(img), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(outfile+"64", BuildELF64(img), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(outfile+"128", BuildELF128(img), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(outfile+".bin", BuildRawBin(img), 0o644); err != nil {
		return err
	}
	return nil
}
