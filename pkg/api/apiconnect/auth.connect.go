package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/pkg/api"
)

const AuthServiceName = "splitme.v1.AuthService"

const (
	AuthServiceGetNonceProcedure       = "/splitme.v1.AuthService/GetNonce"
	AuthServiceSignInProcedure         = "/splitme.v1.AuthService/SignIn"
	AuthServiceGetCurrentUserProcedure = "/splitme.v1.AuthService/GetCurrentUser"
)

// AuthServiceHandler is implemented by the wallet sign-in service.
type AuthServiceHandler interface {
	GetNonce(context.Context, *connect.Request[api.GetNonceRequest]) (*connect.Response[api.GetNonceResponse], error)
	SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for the service and returns
// the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getNonce := connect.NewUnaryHandler(AuthServiceGetNonceProcedure, svc.GetNonce, opts...)
	signIn := connect.NewUnaryHandler(AuthServiceSignInProcedure, svc.SignIn, opts...)
	getCurrentUser := connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceGetNonceProcedure:
			getNonce.ServeHTTP(w, r)
		case AuthServiceSignInProcedure:
			signIn.ServeHTTP(w, r)
		case AuthServiceGetCurrentUserProcedure:
			getCurrentUser.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) GetNonce(context.Context, *connect.Request[api.GetNonceRequest]) (*connect.Response[api.GetNonceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AuthService.GetNonce is not implemented"))
}

func (UnimplementedAuthServiceHandler) SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AuthService.SignIn is not implemented"))
}

func (UnimplementedAuthServiceHandler) GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AuthService.GetCurrentUser is not implemented"))
}

// AuthServiceClient is a client for the wallet sign-in service.
type AuthServiceClient interface {
	GetNonce(context.Context, *connect.Request[api.GetNonceRequest]) (*connect.Response[api.GetNonceResponse], error)
	SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceClient constructs a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &authServiceClient{
		getNonce:       connect.NewClient[api.GetNonceRequest, api.GetNonceResponse](httpClient, baseURL+AuthServiceGetNonceProcedure, opts...),
		signIn:         connect.NewClient[api.SignInRequest, api.SignInResponse](httpClient, baseURL+AuthServiceSignInProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

type authServiceClient struct {
	getNonce       *connect.Client[api.GetNonceRequest, api.GetNonceResponse]
	signIn         *connect.Client[api.SignInRequest, api.SignInResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *authServiceClient) GetNonce(ctx context.Context, req *connect.Request[api.GetNonceRequest]) (*connect.Response[api.GetNonceResponse], error) {
	return c.getNonce.CallUnary(ctx, req)
}

func (c *authServiceClient) SignIn(ctx context.Context, req *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	return c.signIn.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
