package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Base node errors
	CodeNodeNotStarted:  "Base node is not started",
	CodeNodeNotSynced:   "Base node is not synced",
	CodeNodeRPCError:    "Base node RPC call failed",
	CodeBlockNotFound:   "Block not found",
	CodeBlockScanError:  "Block explorer request failed",
	CodeOrphanChainSeen: "Local chain diverges from block explorer",

	// Process supervision errors
	CodeProcessSpawnFailed: "Failed to spawn process",
	CodeProcessExitError:   "Process did not exit cleanly",
	CodeProcessNotRunning:  "Process is not running",

	// Miner errors
	CodeMinerAPIError: "Miner API request failed",

	// Hardware errors
	CodeHardwareProbeFailed:  "Hardware probe failed",
	CodeReaderNotImplemented: "Hardware reader not implemented for this vendor",
	CodeConfigDirUnavailable: "User config directory unavailable",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
