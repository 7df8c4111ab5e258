package interfaces

import "context"

// AuthChecker answers whether the current caller is an authenticated administrator.
type AuthChecker interface {
	IsAuthenticated(ctx context.Context) bool
}
