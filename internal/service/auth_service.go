package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/internal/auth"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
	"github.com/splitme/splitme/pkg/api"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

// AuthService implements wallet sign-in.
type AuthService struct {
	apiconnect.UnimplementedAuthServiceHandler
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	names         storage.AddressBook
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, names storage.AddressBook, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		names:         names,
		logger:        logger,
	}
}

// GetNonce issues the challenge message a wallet signs to sign in.
func (s *AuthService) GetNonce(ctx context.Context, req *connect.Request[api.GetNonceRequest]) (*connect.Response[api.GetNonceResponse], error) {
	s.logger.Info("GetNonce request", "address", req.Msg.Address)

	challenge, err := s.authenticator.Challenge(ctx, req.Msg.Address)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetNonceResponse{
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		ExpiresAt: api.NewTimestamp(challenge.ExpiresAt),
	}), nil
}

// SignIn verifies a signed challenge and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, req *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	s.logger.Info("SignIn request", "address", req.Msg.Address)

	if req.Msg.Signature == "" {
		return nil, invalidArgument("signature is required")
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Address, req.Msg.Signature)
	if err != nil {
		s.logger.Warn("SignIn failed", "address", req.Msg.Address, "error", err)
		if errors.Is(err, wallet.ErrInvalidAddress) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "address", user.Address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Wallet signed in", "address", user.Address)
	return connect.NewResponse(&api.SignInResponse{
		Token: token,
		User:  &api.User{Address: user.Address, DisplayName: user.DisplayName},
	}), nil
}

// GetCurrentUser returns the signed-in wallet. The display name is read
// from the address book so renames show up without signing in again.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetCurrentUser request", "address", address)

	user := &api.User{Address: address}
	entry, err := s.names.GetAddressEntry(ctx, address)
	if err == nil {
		user.DisplayName = entry.OwnerName
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{User: user}), nil
}
