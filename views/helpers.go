package views

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/torvi/internal/middleware"
	users "github.com/AdamBeresnev/torvi/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func voteLabel(votes, needed int) string {
	return fmt.Sprintf("%d/%d", votes, needed)
}
