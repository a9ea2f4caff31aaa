package handlers

import "todo_server/internal/protocol"

// StatusPolicy names the two places where the protocol answers an
// authorization problem with a status clients already depend on.
type StatusPolicy struct {
	// AuthFailure answers a malformed Basic header or wrong credentials.
	AuthFailure protocol.Status
	// OwnershipViolation answers PUT/DELETE on another user's task.
	OwnershipViolation protocol.Status
}

// CompatPolicy keeps the established wire behavior: failed authentication
// is indistinguishable from an unknown route, while touching someone
// else's task is reported as unauthorized.
var CompatPolicy = StatusPolicy{
	AuthFailure:        protocol.StatusNotFound,
	OwnershipViolation: protocol.StatusUnauthorized,
}

// UnifiedPolicy answers both cases with 401.
var UnifiedPolicy = StatusPolicy{
	AuthFailure:        protocol.StatusUnauthorized,
	OwnershipViolation: protocol.StatusUnauthorized,
}

func (p StatusPolicy) authFailure() protocol.Response {
	return errorResponse(p.AuthFailure)
}

func (p StatusPolicy) ownershipViolation() protocol.Response {
	return errorResponse(p.OwnershipViolation)
}

func errorResponse(s protocol.Status) protocol.Response {
	if s == protocol.StatusNotFound {
		return protocol.NotFound()
	}
	return protocol.Unauthorized()
}
