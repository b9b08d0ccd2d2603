package common

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme accepted by the API.
const BearerScheme = "Bearer"
