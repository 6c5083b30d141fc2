package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Common errors shared by all modules.
var (
	// ErrInvalidParam indicates a malformed or missing request parameter.
	ErrInvalidParam = Register(New(
		MakeCode(ServiceCommon, CategoryRequest, 1),
		http.StatusBadRequest, codes.InvalidArgument,
		"Invalid request parameter"))

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = Register(New(
		MakeCode(ServiceCommon, CategoryResource, 1),
		http.StatusNotFound, codes.NotFound,
		"Resource not found"))

	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = Register(New(
		MakeCode(ServiceCommon, CategoryConflict, 1),
		http.StatusConflict, codes.AlreadyExists,
		"Resource already exists"))

	// ErrInternal is the fallback for unclassified server errors.
	ErrInternal = Register(New(
		MakeCode(ServiceCommon, CategoryInternal, 1),
		http.StatusInternalServerError, codes.Internal,
		"Internal server error"))

	// ErrDatabase indicates a MongoDB operation failure.
	ErrDatabase = Register(New(
		MakeCode(ServiceCommon, CategoryDatabase, 1),
		http.StatusInternalServerError, codes.Internal,
		"Database error"))

	// ErrCache indicates a Redis operation failure.
	ErrCache = Register(New(
		MakeCode(ServiceCommon, CategoryCache, 1),
		http.StatusInternalServerError, codes.Internal,
		"Cache error"))

	// ErrTimeout indicates an upstream call exceeded its deadline.
	ErrTimeout = Register(New(
		MakeCode(ServiceCommon, CategoryTimeout, 1),
		http.StatusGatewayTimeout, codes.DeadlineExceeded,
		"Operation timed out"))
)

// Event pipeline errors.
var (
	// ErrUnknownAgentType aborts card building for an unrecognized agent type.
	ErrUnknownAgentType = Register(New(
		MakeCode(ServiceEvent, CategoryRequest, 1),
		http.StatusBadRequest, codes.InvalidArgument,
		"Unknown agent type"))

	// ErrInvalidEventStatus rejects a transition from an unexpected status.
	ErrInvalidEventStatus = Register(New(
		MakeCode(ServiceEvent, CategoryConflict, 1),
		http.StatusConflict, codes.FailedPrecondition,
		"Invalid event status for this operation"))

	// ErrInvalidPayload indicates raw_data does not match the agent type's shape.
	ErrInvalidPayload = Register(New(
		MakeCode(ServiceEvent, CategoryRequest, 2),
		http.StatusBadRequest, codes.InvalidArgument,
		"Event payload does not match agent type"))
)

// Agent errors.
var (
	// ErrModelCall indicates the LLM provider call failed after retries.
	ErrModelCall = Register(New(
		MakeCode(ServiceAgent, CategoryNetwork, 1),
		http.StatusBadGateway, codes.Unavailable,
		"Model provider call failed"))

	// ErrModelOutput indicates the model reply could not be parsed as JSON.
	ErrModelOutput = Register(New(
		MakeCode(ServiceAgent, CategoryInternal, 1),
		http.StatusInternalServerError, codes.Internal,
		"Model output could not be parsed"))
)

// Knowledge base errors.
var (
	// ErrEmbedding indicates the embedding provider call failed.
	ErrEmbedding = Register(New(
		MakeCode(ServiceKnowledge, CategoryNetwork, 1),
		http.StatusBadGateway, codes.Unavailable,
		"Embedding provider call failed"))

	// ErrVectorStore indicates a Milvus operation failure.
	ErrVectorStore = Register(New(
		MakeCode(ServiceKnowledge, CategoryDatabase, 1),
		http.StatusInternalServerError, codes.Internal,
		"Vector store error"))
)

// Datasource errors.
var (
	// ErrUnsupportedDatasource rejects an unknown datasource type.
	ErrUnsupportedDatasource = Register(New(
		MakeCode(ServiceDatasource, CategoryRequest, 1),
		http.StatusBadRequest, codes.InvalidArgument,
		"Unsupported datasource type"))

	// ErrDatasourceUnreachable indicates the connectivity test failed.
	ErrDatasourceUnreachable = Register(New(
		MakeCode(ServiceDatasource, CategoryNetwork, 1),
		http.StatusBadGateway, codes.Unavailable,
		"Datasource unreachable"))
)

// Channel adapter errors.
var (
	// ErrUnknownChannel indicates no adapter is registered for the channel type.
	ErrUnknownChannel = Register(New(
		MakeCode(ServiceChannel, CategoryRequest, 1),
		http.StatusBadRequest, codes.InvalidArgument,
		"Unknown channel type"))

	// ErrSendMessage indicates an outbound delivery failure.
	ErrSendMessage = Register(New(
		MakeCode(ServiceChannel, CategoryNetwork, 1),
		http.StatusBadGateway, codes.Unavailable,
		"Failed to send message"))
)
