package main

import (
	"log"

	"github.com/davecgh/go-spew/spew"
)

// dumpTokens, dumpSections and dumpSymbols are gated behind --debug.
// Tokens and sections get a structural dump via go-spew rather than a
// hand-rolled format, since spew already handles cycles and unexported
// fields sanely; symbols are logged one per line with their address.
func dumpTokens(tokens []Token) {
	log.Println("token stream:")
	spew.Dump(tokens)
}

func dumpSections(ss *SectionSet) {
	log.Println("sections:")
	for _, sec := range ss.All() {
		log.Printf("  %s", sec)
	}
	spew.Dump(ss.All())
}

func dumpSymbols(st *SymbolTable, resolved map[string]Address) {
	log.Println("symbols:")
	for _, name := range st.Names() {
		addr, ok := resolved[name]
		if !ok {
			log.Printf("  %s: unresolved", name)
			continue
		}
		log.Printf("  %s = %s", name, addr)
	}
}
