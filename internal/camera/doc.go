// Package camera defines the camera specification record: the extraction
// [Schema], the typed [Spec] persisted by the store, the lookup [Query] and
// the prompt that asks a model for a record.
package camera
