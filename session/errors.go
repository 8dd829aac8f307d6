package session

import "errors"

var (
	NotAuthenticatedErr          = errors.New("not authenticated")
	RefreshFailedErr             = errors.New("token refresh failed")
	IdentityBrokerUnavailableErr = errors.New("identity broker unavailable")
	CsrfValidationFailedErr      = errors.New("state validation failed")
)
