package middlewares

const (
	ctxUserIDKey   = "auth.userID"
	ctxTenantIDKey = "auth.tenantID"
	ctxRoleKey     = "auth.role"

	CtxRequestID = "request_id"
)
