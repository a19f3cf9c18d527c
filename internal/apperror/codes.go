package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Mining-specific error codes
const (
	// Base node errors
	CodeNodeNotStarted  Code = "NODE_NOT_STARTED"
	CodeNodeRPCError    Code = "NODE_RPC_ERROR"
	CodeNodeNotSynced   Code = "NODE_NOT_SYNCED"
	CodeBlockNotFound   Code = "BLOCK_NOT_FOUND"
	CodeBlockScanError  Code = "BLOCK_SCAN_ERROR"
	CodeOrphanChainSeen Code = "ORPHAN_CHAIN_DETECTED"

	// Process supervision errors
	CodeProcessSpawnFailed Code = "PROCESS_SPAWN_FAILED"
	CodeProcessExitError   Code = "PROCESS_EXIT_ERROR"
	CodeProcessNotRunning  Code = "PROCESS_NOT_RUNNING"

	// Miner errors
	CodeMinerAPIError Code = "MINER_API_ERROR"

	// Hardware errors
	CodeHardwareProbeFailed  Code = "HARDWARE_PROBE_FAILED"
	CodeReaderNotImplemented Code = "READER_NOT_IMPLEMENTED"
	CodeConfigDirUnavailable Code = "CONFIG_DIR_UNAVAILABLE"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
