package types

// ContextUserKey is the gin context key under which the auth middleware
// stores the authenticated user.
const ContextUserKey = "user"
