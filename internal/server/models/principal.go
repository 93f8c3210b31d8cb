package models

// Principal identifies the authenticated actor behind a request. Every
// metadata query in the system is scoped by one; an empty Principal is
// never a valid query scope.
type Principal struct {
	ID        string
	AccountID string
	Email     string
}
