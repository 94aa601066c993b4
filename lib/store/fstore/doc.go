// Package fstore implements the store.IRecordStore interface on top of a single
// file of newline-delimited JSON. Each non-empty line holds one record as a JSON
// object with the keys surname, name, patronymic, phone and note, in that order.
//
// Implementation Details:
//
//   - No Cache: Every operation reads the whole file again, so edits made to the
//     file by other tools are picked up on the next request.
//
//   - Append: Add opens the file in append mode and writes the separating newline
//     in front of the new line when the file is not empty. The file therefore never
//     ends with a newline.
//
//   - Rewrite: Delete writes the surviving records to a temporary file in the same
//     directory and renames it over the store file. A crash during the rewrite
//     leaves either the old or the new content, never a truncated file.
//
// Thread Safety:
//
//	All operations hold a mutex for their whole duration, so concurrent callers
//	inside one process are serialized. Nothing protects against other processes
//	writing the same file.
//
// Usage Example:
//
//	s := fstore.NewFileStore("database.txt")
//	_ = s.Add(store.Record{Surname: "Ivanov", Name: "Ivan", Phone: "12345"})
//	records, _ := s.Search(store.FieldPhone, "234")
package fstore
