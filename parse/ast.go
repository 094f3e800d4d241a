package parse

import "github.com/sur5r/cc65/scan"

// Declaration is one external declaration: a specifier followed by zero or
// more declarators.
type Declaration struct {
	Spec  *DeclSpec
	Decls []*Declarator
	Pos   scan.FilePos
	// Body is set for a function definition. Bodies are skipped.
	Body bool
	// Inits has an entry per declarator, true when it had an initializer.
	Inits []bool
}

// TranslationUnit is the result of parsing a whole file.
type TranslationUnit struct {
	Decls   []*Declaration
	Symbols SymbolTable
	// Number of diagnostics reported.
	Errors   int
	Warnings int
}
