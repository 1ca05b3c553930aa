// Package model defines the field tree behind a workflow form. A Form holds an
// ordered list of Field nodes; each node carries the attributes shared by every
// widget plus a Config value holding the attributes of its concrete kind.
// Object and array containers nest their own child fields and local rules.
//
// Config is a closed union: only the variant types declared in this package
// implement it, and callers switch over the concrete types.
//
// Values that may be either a literal or a `$`-prefixed path expression are
// represented by Ref. Builders validate the literal/reference invariant at the
// boundary (decode, defaults) through CheckRefs instead of at every read site.
package model
