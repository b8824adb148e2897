package main

// Finish runs the implicit second pass: first every section still
// holding queued trailing labels (anything other than whichever
// section was current at EOF) gets those labels flushed at its final
// length, then every section has accumulated its final byte length so
// base addresses can be assigned, and every fix-up scheduled during Run
// (branches, LA, CALL, JMP, FARCALL) can be applied now that symbol
// addresses are known.
func (d *Driver) Finish(startAddr Address, pageSeparate bool) (map[string]Address, error) {
	for _, sec := range d.sec.All() {
		for _, pl := range sec.FlushLabels() {
			d.sym.Define(pl.name, SymbolLocation{Section: sec, Offset: sec.Len(), Line: pl.line})
		}
	}
	bases := d.sec.AssignBases(startAddr, pageSeparate)
	d.pendingBases = bases
	return d.sym.Resolve(bases)
}
