// Package s3archive keeps the raw model output of lookups that did not
// produce an authoritative record, so it can be reviewed later. Entries
// are JSON objects stored in an S3-compatible bucket (MinIO in
// development) under <status>/<yyyy>/<mm>/<dd>/<uuid>.json.
package s3archive
