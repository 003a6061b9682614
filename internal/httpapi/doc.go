// Package httpapi exposes camera lookup, record ingestion, extraction and
// the photography mentor as JSON routes on a net/http ServeMux.
//
// Pipeline outcomes map to status codes: a clean or salvaged record is
// 200 (the latter with _warning and _raw), a declared error or missing
// required field is 400, unparseable output is 422 and a failing model
// backend is 502.
package httpapi
