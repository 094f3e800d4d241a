// Package parse reads C declarations the way the cc65 compiler does.
//
// Glossary:
//
// Declarator
// ----------
//
// A declarator is the part of a declaration that specifies
// the name that is to be introduced into the program.
//
//	unsigned int a, *b, **c, *const*d, *volatile*e ;
//	             ^  ^^  ^^^  ^^^^^^^^  ^^^^^^^^^^^
//
// Direct Declarator
// -----------------
//
// A direct declarator is missing the pointer prefix.
//
//	unsigned int a[32], b[];
//	             ^^^^^  ^^^
//
// Abstract Declarator
// -------------------
//
// A declarator missing an identifier, as in casts and sizeof.
//
//	(char (__far__ *)[4])
//	      ^^^^^^^^^^^^^^
//
// Encoding
// --------
//
// The type of a declarator is stored as a ctype.Encoding, outermost
// derivation first and the base type last. The pointer prefix of each
// nesting level binds weaker than the postfixes of that level, so in
//
//	int *(*x)[3];
//
// x is a pointer to an array of 3 pointers to int.
//
// Recovery
// --------
//
// After an error the parser skips balanced groups of tokens until it finds
// a ',' or ';' of the current construct, see SmartErrorSkip.
package parse
