// Package column holds the in-memory form of one stripe: a Column per
// attribute and the Columns container that serializes them.
//
// A Column is either a [FixedColumn] (dense values of 1, 2, 4 or 8 bytes) or a
// [VariableColumn] (payload bytes plus one length per value). Only non-null
// values are stored; nulls live in an optional presence bitmap where a set bit
// means the row has a value. A column without a bitmap has no nulls.
//
// Serialization goes through a [StreamPlan]. The plan lists every stream in
// file order together with its source bytes, so the size computed from it and
// the bytes copied by it can never disagree:
//
//	plan := cols.Plan()
//	buf := make([]byte, plan.Size())
//	plan.Combine(buf)
//	descriptors := plan.Streams()
package column
