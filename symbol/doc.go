// Package symbol interns short texts into small, stable integer handles.
//
// A Symbol wraps the ID its text was given by the process-wide Table, so
// equality, ordering and hashing of Symbols never touch the text. IDs are
// handed out in creation order starting at 1; ID 0 is the null symbol and
// always resolves to the empty string. An ID, once issued, resolves to the
// same text until the table is cleared.
//
// Interning text that is already known takes one short lock and allocates
// nothing. Resolving an ID back to text takes no lock at all.
//
// IDs are not stable across processes. Persist the text of a Symbol, never
// its ID; MarshalText does exactly that.
package symbol
