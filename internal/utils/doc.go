// Package utils holds small helpers shared by the providers and services:
// [DoPostSync] for JSON round-trips to provider APIs, [HTTPError] for
// non-2xx answers, string truncation for log previews, and [Timer].
package utils
