package tracing

// Span names for registry operations.
const (
	SpanRegistryCreate = "registry.create"
	SpanRegistryList   = "registry.list"
	SpanRegistryUpdate = "registry.update_classification"
	SpanRegistryRemove = "registry.remove"
)

// Span attribute keys.
const (
	AttrPersonID       = "person.id"
	AttrClassification = "person.classification"
	AttrHasImage       = "person.has_image"
	AttrResultCount    = "registry.result_count"
	AttrHTTPStatus     = "http.status_code"
	AttrHTTPMethod     = "http.method"
	AttrBaseURL        = "registry.base_url"
)
