// Package mentor is the photography assistant: conversational advice with
// optional image input, and structured critiques of a single photo.
package mentor
