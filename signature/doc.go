// Package signature parses and prints SQL type signatures.
//
// A signature names a data type: a scalar such as bigint or
// "timestamp with time zone", a parameterised container such as
// array(bigint) or map(varchar,row(a bigint,"b" double)), a user-defined
// type catalog.schema.type (optionally resolved to its underlying base with
// a ':' suffix), a distinct type, or an enum whose signature embeds its
// key/value map.
//
// Parse turns text into an immutable *Signature and Signature.String prints
// the canonical form back. For every accepted input, printing is stable:
//
//	sig, err := signature.Parse("decimal(p,s)", "p", "s")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sig, sig.Calculated()) // decimal(p,s) true
//
// Base names are case-insensitive and print lower-cased; int is an alias of
// integer. A bare varchar carries the UnboundedLength parameter, which the
// printer suppresses.
//
// Parse errors match ErrInvalidSignature and report the byte offset of the
// defect. A row with two fields of the same name fails with
// ErrDuplicateField.
package signature
