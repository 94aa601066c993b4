// Package store provides the record model and the storage interface of the
// phonebook. It defines the fixed record schema, the IRecordStore interface used
// by the server and a structured error type shared by all implementations.
//
// Key Components:
//
//   - Record and Schema: A phonebook entry has five string fields (surname, name,
//     patronymic, phone, note). Schema holds the field names in their canonical
//     order, which is also the order used on disk and for text rendering.
//
//   - IRecordStore Interface: The operations the server needs (Enumerate, Search,
//     Add, Delete). Search is a case-sensitive substring match on one field, Delete
//     removes the first record with any field exactly equal to the target.
//
//   - Error System: Store errors carry a RetCode. RetCStorageError marks failures of
//     the storage medium (unreadable file, unparsable line, failed write) and is
//     fatal only for the request that caused it.
//
// Implementations:
//
//	- File Store (fstore): Persists records as newline-delimited JSON in a single
//	  file. Available in the "github.com/3esharf1k/phone-book/lib/store/fstore" package.
package store
