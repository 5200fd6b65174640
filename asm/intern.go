package asm

// Symbol is an interned identifier.
type Symbol int64

// Interner maps identifier text to stable symbols for one assembly run.
type Interner struct {
	ids   map[string]Symbol
	names []string
}

// Intern returns the symbol of the text, creating it if needed.
func (in *Interner) Intern(text string) (sym Symbol) {
	sym, ok := in.ids[text]
	if ok {
		return
	}

	if in.ids == nil {
		in.ids = make(map[string]Symbol, 64)
	}

	sym = Symbol(len(in.names))
	in.ids[text] = sym
	in.names = append(in.names, text)
	return
}

// Lookup returns the symbol of the text, if it was interned.
func (in *Interner) Lookup(text string) (sym Symbol, ok bool) {
	sym, ok = in.ids[text]
	return
}

// Name returns the text of the symbol.
func (in *Interner) Name(sym Symbol) string {
	if sym < 0 || int(sym) >= len(in.names) {
		return ""
	}
	return in.names[sym]
}

// Len returns the number of interned symbols.
func (in *Interner) Len() int {
	return len(in.names)
}
