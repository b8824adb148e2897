package main

import "fmt"

// Opcode is a real RISC-V instruction mnemonic: its Handler consumes
// whatever operand tokens it needs from the Driver's token stream and
// emits 32-bit instruction words into the current section.
type Opcode struct {
	Name    string
	Handler func(d *Driver) error
}

// PseudoOp is a macro-like opcode (LI/SET/LA/RET/...) that lowers to
// one or more real instructions, possibly scheduling a fix-up when it
// references a symbol that isn't known yet, or a data emitter
// (db/resb/incbin/...) that writes or reserves raw bytes.
type PseudoOp struct {
	Name    string
	Handler func(d *Driver) error
}

// Driver is the two-pass engine: it walks the classified token stream
// once, dispatching opcodes/pseudo-ops/directives as it goes, emitting
// bytes into the current section and deferring anything that needs a
// symbol address via SymbolTable.Schedule. A second, implicit pass
// happens in Finish, once every label has a real address.
type Driver struct {
	tokens  []Token
	pos     int
	sec     *SectionSet
	sym     *SymbolTable
	verbose bool
	debug   bool

	// includeStack is not read or written anywhere: .include splices the
	// included tokens into tokens at pos instead (see directiveInclude).
	includeStack []includeFrame

	// pendingBases holds each section's assigned base address once
	// Finish has run AssignBases; fix-up closures scheduled during Run
	// read it to turn a section-relative offset into a real Address.
	pendingBases map[*Section]Address
}

type includeFrame struct {
	tokens []Token
	pos    int
}

func NewDriver(tokens []Token, opts Options) *Driver {
	return &Driver{
		tokens:  tokens,
		sec:     NewSectionSet(opts.Verbose),
		sym:     NewSymbolTable(opts.Verbose),
		verbose: opts.Verbose,
		debug:   opts.Debug,
	}
}

func (d *Driver) Sections() *SectionSet { return d.sec }
func (d *Driver) Symbols() *SymbolTable { return d.sym }

func (d *Driver) atEOF() bool { return d.pos >= len(d.tokens) }

func (d *Driver) peek() (Token, bool) {
	if d.atEOF() {
		return Token{}, false
	}
	return d.tokens[d.pos], true
}

func (d *Driver) advance() (Token, bool) {
	tok, ok := d.peek()
	if ok {
		d.pos++
	}
	return tok, ok
}

// Next requires the next token to have the given type and returns it,
// or a ParseError naming what was actually found.
func (d *Driver) Next(want TokenType) (Token, error) {
	tok, ok := d.advance()
	if !ok {
		return Token{}, &ParseError{Msg: fmt.Sprintf("expected %s, got end of input", want)}
	}
	if tok.Type != want {
		return Token{}, &ParseError{Line: tok.Line, Token: tok.Value, Msg: fmt.Sprintf("expected %s, got %s", want, tok.Type)}
	}
	return tok, nil
}

// NextRegister is a convenience wrapper returning the decoded register
// number directly.
func (d *Driver) NextRegister() (uint8, error) {
	tok, err := d.Next(TKRegister)
	if err != nil {
		return 0, err
	}
	return tok.Reg, nil
}

// NextImm consumes either a single TKConstant or a full constant chain
// joined by any operator isOperatorWord accepts (numbers and
// already-known symbols, which contribute their section offset, only — an unknown symbol in
// an immediate position is an UnresolvedSymbolError, since immediates
// unlike branch/jump/LA targets have no deferred fix-up path).
func (d *Driver) NextImm() (int64, error) {
	folder := newConstFolder()
	for {
		tok, ok := d.peek()
		if !ok {
			break
		}
		if isOperatorWord(tok.Value) {
			if err := folder.Op(tok.Value); err != nil {
				return 0, &ParseError{Line: tok.Line, Token: tok.Value, Msg: err.Error()}
			}
			d.pos++
			continue
		}
		switch tok.Type {
		case TKConstant:
			if err := folder.Feed(tok.I64); err != nil {
				return 0, &ParseError{Line: tok.Line, Token: tok.Value, Msg: err.Error()}
			}
			d.pos++
		case TKSymbol:
			loc, known := d.sym.Lookup(tok.Value)
			if !known || loc.Section == nil {
				return 0, &UnresolvedSymbolError{Line: tok.Line, Symbol: tok.Value}
			}
			if err := folder.Feed(int64(loc.Offset)); err != nil {
				return 0, &ParseError{Line: tok.Line, Token: tok.Value, Msg: err.Error()}
			}
			d.pos++
		default:
			return 0, &ParseError{Line: tok.Line, Token: tok.Value, Msg: "expected an immediate"}
		}
		nextTok, ok := d.peek()
		if !ok || !isOperatorWord(nextTok.Value) {
			break
		}
	}
	return folder.Result(), nil
}

// NextSymbol consumes a TKSymbol token without requiring it to already
// be defined (branch/jump/LA targets resolve later via fix-ups).
func (d *Driver) NextSymbol() (Token, error) {
	return d.Next(TKSymbol)
}

func (d *Driver) currentOffset() uint64 {
	return d.sec.Current().Len()
}

// flushLabels binds every label queued since the last emitted byte to
// the current section's current offset, per the label-before-
// instruction addressing invariant.
func (d *Driver) flushLabels(line uint32) {
	for _, pl := range d.sec.Current().FlushLabels() {
		d.sym.Define(pl.name, SymbolLocation{Section: d.sec.Current(), Offset: d.sec.Current().Len(), Line: pl.line})
	}
}

// Run executes the single explicit pass over the token stream,
// dispatching labels, directives, opcodes and pseudo-ops as they're
// seen. Deferred fix-ups registered along the way are resolved
// afterward by Finish.
func (d *Driver) Run() error {
	for !d.atEOF() {
		tok, _ := d.advance()
		switch tok.Type {
		case TKLabel:
			d.sec.Current().QueueLabel(tok.Value, tok.Line)
		case TKDirective:
			d.flushLabels(tok.Line)
			if err := dispatchDirective(d, tok); err != nil {
				return err
			}
		case TKOpcode:
			d.sec.Current().Align(4)
			d.flushLabels(tok.Line)
			if err := tok.Opcode.Handler(d); err != nil {
				return err
			}
		case TKPseudoOp:
			d.sec.Current().Align(4)
			d.flushLabels(tok.Line)
			if err := tok.PseudoOp.Handler(d); err != nil {
				return err
			}
		case TKString, TKSymbol, TKConstant, TKRegister:
			return &ParseError{Line: tok.Line, Token: tok.Value, Msg: "unexpected token outside of an instruction or directive"}
		}
	}
	// any label at EOF with no following byte still needs to exist
	d.flushLabels(0)
	return nil
}

// Emit32 writes one 32-bit little-endian instruction word into the
// current section.
func (d *Driver) Emit32(word uint32) {
	d.sec.Current().WriteU32LE(word)
}
