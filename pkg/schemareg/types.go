package schemareg

// SchemaType identifies the serialization format of a schema document.
type SchemaType string

const (
	Avro     SchemaType = "AVRO"
	JSON     SchemaType = "JSON"
	Protobuf SchemaType = "PROTOBUF"
)

// SchemaDocument is one immutable schema version as stored by a registry.
// RawPayload holds the decoded response body as the registry returned it;
// its shape varies between registry implementations, so callers normalize
// it before use instead of reading fields off it directly.
type SchemaDocument struct {
	Subject    string
	Version    int
	GlobalID   int
	SchemaType SchemaType
	RawPayload any
}

// RegisterRequest carries a canonical schema string to the registry.
// SchemaType is omitted from the wire body when empty so older registries
// that reject unknown fields still accept the request.
type RegisterRequest struct {
	Schema     string     `json:"schema"`
	SchemaType SchemaType `json:"schemaType,omitempty"`
}

// RegisterResponse is the registry's acknowledgement of a new version.
type RegisterResponse struct {
	ID int `json:"id"`
}
