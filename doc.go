/*
Package ion reads and writes documents in a self-describing binary format.

A document, or datagram, is a sequence of values. Each value starts with a
type descriptor byte holding its type and its length, followed by its
payload. Field names, annotations and symbol values are not stored as text:
they are ids in a symbol table, which is itself written in the document as
a system value in front of the values using it.

Lazy values

A loaded datagram only decodes the boundaries of its top-level values.
Everything else is decoded on demand, when a value is read or traversed,
and stays in the document buffer otherwise.

Values are modified in place through their handles:

	v, _ := dg.Get(0)
	name, _, _ := v.Field("name")
	name.SetText("bob")

A modified value and all of its containers are dirty. ToBytes re-encodes
the dirty values only, copies everything else byte for byte, and moves the
values that follow a value whose length changed.

Symbol tables

A symbol table becomes immutable as soon as a value is appended under it.
When a value later needs a name the table does not hold, a new table
holding every symbol of the previous one plus the new names is written in
front of that value. Ids already written never change, and removing a
value never removes symbols.

Values built with the New functions live outside of any datagram until they
are appended. A value that is attached to a datagram cannot be appended to
another one; Clone it first.

Concurrency

A Datagram is not safe for concurrent use. Reading values that were already
materialized from several goroutines is fine as long as nothing writes to
the datagram at the same time.
*/
package ion
