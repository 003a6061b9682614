package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4.1-mini")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseContent is the response content from LLM
	AttrResponseContent = "response.content"

	// AttrResponseBytes is the size of the response content
	AttrResponseBytes = "response.bytes"
)

// --- Extraction Pipeline Attributes ---

const (
	// AttrParseSchema is the name of the target record schema
	AttrParseSchema = "parse.schema"

	// AttrParseRawBytes is the size of the model output as received
	AttrParseRawBytes = "parse.raw.bytes"

	// AttrParseNormalizedBytes is the size of the text after repairs
	AttrParseNormalizedBytes = "parse.normalized.bytes"

	// AttrParseRepairs lists the repairs that changed the text, in order
	AttrParseRepairs = "parse.repairs"

	// AttrParseStage is the last pipeline stage reached
	AttrParseStage = "parse.stage"

	// AttrParseStatus is the outcome status (success, partial_success, failure)
	AttrParseStatus = "parse.status"

	// AttrParseFailureKind is the failure kind when the outcome is a failure
	AttrParseFailureKind = "parse.failure_kind"

	// AttrParseSalvagedFields is the number of pairs recovered by salvage
	AttrParseSalvagedFields = "parse.salvaged_fields"
)

// --- Camera Lookup Attributes ---

const (
	// AttrCameraModel is the requested camera model name
	AttrCameraModel = "camera.model_name"

	// AttrCameraManufacturer is the requested camera manufacturer
	AttrCameraManufacturer = "camera.manufacturer"

	// AttrCameraAlias is the requested camera alias
	AttrCameraAlias = "camera.alias"

	// AttrLookupSource is where a lookup was answered from (cache, store, llm)
	AttrLookupSource = "lookup.source"

	// AttrArchiveKey is the object key of an archived model response
	AttrArchiveKey = "archive.key"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRoute is the matched server route pattern
	AttrHTTPRoute = "http.route"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanClientSendMessage is the span name for client message sending
	SpanClientSendMessage = "client.send_message"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"

	// SpanParseExtract is the span name for one extraction pipeline run
	SpanParseExtract = "parse.extract"

	// SpanCameraLookup is the span name for a camera lookup
	SpanCameraLookup = "camera.lookup"

	// SpanHTTPRequest is the span name for an inbound HTTP request
	SpanHTTPRequest = "http.request"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventCacheHit marks a lookup answered from the in-process cache
	EventCacheHit = "lookup.cache_hit"

	// EventRecordPersisted marks a record written to the store
	EventRecordPersisted = "lookup.persisted"

	// EventResponseArchived marks a raw model response written to the archive
	EventResponseArchived = "lookup.archived"
)

// --- Metric Names ---

const (
	// MetricClientRequestCount is the counter for client requests
	MetricClientRequestCount = "mirror.client.request.count"

	// MetricClientRequestDuration is the histogram for request duration
	MetricClientRequestDuration = "mirror.client.request.duration"

	// MetricClientTokensTotal is the counter for total tokens
	MetricClientTokensTotal = "mirror.client.tokens.total"

	// MetricParseOutcomes is the counter of pipeline outcomes by status
	MetricParseOutcomes = "mirror.parse.outcomes"

	// MetricLookupCount is the counter of camera lookups by source
	MetricLookupCount = "mirror.lookup.count"
)
