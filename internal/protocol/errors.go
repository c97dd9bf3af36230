package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command/rule layer.
	ErrUnauthorized  = "E_UNAUTHORIZED"
	ErrAlreadyExists = "E_ALREADY_EXISTS"
	ErrNotFound      = "E_NOT_FOUND"
	ErrNotOwner      = "E_NOT_OWNER"
	ErrQuotaExceeded = "E_QUOTA_EXCEEDED"
	ErrBadRequest    = "E_BAD_REQUEST"

	// Interaction correlation.
	ErrTimedOut   = "E_TIMED_OUT"
	ErrSuperseded = "E_SUPERSEDED"

	// Host/world layer.
	ErrWorldQuery  = "E_WORLD_QUERY"
	ErrImportParse = "E_IMPORT_PARSE"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrUnauthorized:    {},
	ErrAlreadyExists:   {},
	ErrNotFound:        {},
	ErrNotOwner:        {},
	ErrQuotaExceeded:   {},
	ErrBadRequest:      {},
	ErrTimedOut:        {},
	ErrSuperseded:      {},
	ErrWorldQuery:      {},
	ErrImportParse:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
