package auth

const (
	ACCESS_TOKEN_COOKIE_NAME = "sb-access-token"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	unauthorizedMessage = "Unauthorized"
)
