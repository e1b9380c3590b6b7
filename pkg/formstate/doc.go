// Package formstate holds the certificate form's field catalogue and the store
// that merges incremental field updates into an immutable State snapshot.
//
// A Store is owned by a single goroutine (see pkg/session). Merge replaces only
// the keys present in an Update, drops keys that are not form fields, and
// coerces values to the field kind. Range checks are left to the submit
// validator in pkg/validation.
package formstate
