package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/torvi/internal/store"
	users "github.com/AdamBeresnev/torvi/internal/user"
	"github.com/AdamBeresnev/torvi/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type AccessTokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, email string) (string, error)
}

type UserService struct {
	store  *store.UserStore
	tokens AccessTokenIssuer
}

func NewUserService(store *store.UserStore, tokens AccessTokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != displayNameOf(gothUser) {
			user.AvatarURL = utils.TrimmedOrNil(gothUser.AvatarURL)
			user.Username = displayNameOf(gothUser)
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	if errors.Is(err, store.ErrNotFound) {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayNameOf(gothUser),
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.TrimmedOrNil(gothUser.AvatarURL),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			return nil, err
		}
		return newUser, nil
	}

	return nil, err
}

func displayNameOf(gothUser goth.User) string {
	if gothUser.NickName != "" {
		return gothUser.NickName
	}
	if gothUser.Name != "" {
		return gothUser.Name
	}
	return gothUser.Email
}

func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, users.GuestID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, store.ErrNotFound) {
		guestUser := &users.User{
			ID:       users.GuestID,
			Email:    "guest@torvi.app",
			Username: "Guest User",
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, err
		}
		return guestUser, nil
	}
	return nil, err
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.store.GetUser(ctx, id)
}

// IssueAccessToken returns a bearer token for the API and live connections.
func (s *UserService) IssueAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}
