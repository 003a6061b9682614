// Package client sits between application services and an [ai.Provider].
// A [Client] fills request defaults (model, system prompt, generation
// config), runs the request through a middleware chain (observability,
// timeout, retry, logging) and returns the provider response.
//
// [Client.Extract] adds the structured step used for camera records: the
// reply text goes through the core/parse pipeline and the caller receives a
// typed parse.Outcome next to the raw response.
package client
