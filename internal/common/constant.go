package common

const (
	// AccessTokenCookieName is the cookie that carries the bearer credential
	// when it is not kept in durable storage.
	AccessTokenCookieName = "access_token"

	// AccessTokenMetadataKey is the metadata key the durable token store uses.
	AccessTokenMetadataKey = "access_token"

	// RequestIDHeaderName is attached to every outbound backend request.
	RequestIDHeaderName = "X-Request-ID"
)
