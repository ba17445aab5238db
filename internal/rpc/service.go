package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "plantshelf.v1.PlantShelf"

// Method names.
const (
	MethodPing                  = "Ping"
	MethodSignUp                = "SignUp"
	MethodSignIn                = "SignIn"
	MethodRefreshToken          = "RefreshToken"
	MethodSignOut               = "SignOut"
	MethodSendVerificationEmail = "SendVerificationEmail"
	MethodVerifyEmail           = "VerifyEmail"
	MethodGetCurrentUser        = "GetCurrentUser"
	MethodConfirmPasswordReset  = "ConfirmPasswordReset"
	MethodListPlants            = "ListPlants"
	MethodWatchPlants           = "WatchPlants"
	MethodIsNameUnique          = "IsNameUnique"
	MethodAddPlant              = "AddPlant"
	MethodUpdatePlant           = "UpdatePlant"
	MethodToggleFavorite        = "ToggleFavorite"
	MethodDeletePlant           = "DeletePlant"
	MethodAttachPhoto           = "AttachPhoto"
	MethodGetPhotoURL           = "GetPhotoURL"
	MethodIsAdmin               = "IsAdmin"
	MethodWatchIsAdmin          = "WatchIsAdmin"
	MethodDeleteUserByEmail     = "DeleteUserByEmail"
	MethodRevokeSessionsByEmail = "RevokeSessionsByEmail"
	MethodSendPasswordReset     = "SendPasswordReset"
)

// FullMethod returns "/plantshelf.v1.PlantShelf/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PlantShelfServer is implemented by the gRPC transport.
type PlantShelfServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)

	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*UserResponse, error)
	GetCurrentUser(context.Context, *GetCurrentUserRequest) (*UserResponse, error)
	ConfirmPasswordReset(context.Context, *ConfirmPasswordResetRequest) (*Empty, error)

	ListPlants(context.Context, *ListPlantsRequest) (*PlantsResponse, error)
	WatchPlants(*WatchPlantsRequest, grpc.ServerStreamingServer[PlantsSnapshot]) error
	IsNameUnique(context.Context, *IsNameUniqueRequest) (*IsNameUniqueResponse, error)
	AddPlant(context.Context, *AddPlantRequest) (*AddPlantResponse, error)
	UpdatePlant(context.Context, *UpdatePlantRequest) (*Empty, error)
	ToggleFavorite(context.Context, *ToggleFavoriteRequest) (*ToggleFavoriteResponse, error)
	DeletePlant(context.Context, *DeletePlantRequest) (*Empty, error)
	AttachPhoto(context.Context, *AttachPhotoRequest) (*AttachPhotoResponse, error)
	GetPhotoURL(context.Context, *GetPhotoURLRequest) (*PhotoURLResponse, error)

	IsAdmin(context.Context, *IsAdminRequest) (*AdminStatus, error)
	WatchIsAdmin(*WatchIsAdminRequest, grpc.ServerStreamingServer[AdminStatus]) error
	DeleteUserByEmail(context.Context, *AdminEmailRequest) (*AdminResult, error)
	RevokeSessionsByEmail(context.Context, *AdminEmailRequest) (*AdminResult, error)
	SendPasswordReset(context.Context, *AdminEmailRequest) (*AdminResult, error)
}

// unary builds a MethodDesc that decodes Req and dispatches to call.
func unary[Req any](method string, call func(PlantShelfServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PlantShelfServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// serverStream builds a server-streaming StreamDesc.
func serverStream[Req, Res any](method string, call func(PlantShelfServer, *Req, grpc.ServerStreamingServer[Res]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    method,
		ServerStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			in := new(Req)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(PlantShelfServer), in, &grpc.GenericServerStream[Req, Res]{ServerStream: stream})
		},
	}
}

// ServiceDesc describes PlantShelf for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlantShelfServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, func(s PlantShelfServer, ctx context.Context, in *PingRequest) (any, error) { return s.Ping(ctx, in) }),
		unary(MethodSignUp, func(s PlantShelfServer, ctx context.Context, in *SignUpRequest) (any, error) { return s.SignUp(ctx, in) }),
		unary(MethodSignIn, func(s PlantShelfServer, ctx context.Context, in *SignInRequest) (any, error) { return s.SignIn(ctx, in) }),
		unary(MethodRefreshToken, func(s PlantShelfServer, ctx context.Context, in *RefreshTokenRequest) (any, error) {
			return s.RefreshToken(ctx, in)
		}),
		unary(MethodSignOut, func(s PlantShelfServer, ctx context.Context, in *SignOutRequest) (any, error) { return s.SignOut(ctx, in) }),
		unary(MethodSendVerificationEmail, func(s PlantShelfServer, ctx context.Context, in *SendVerificationEmailRequest) (any, error) {
			return s.SendVerificationEmail(ctx, in)
		}),
		unary(MethodVerifyEmail, func(s PlantShelfServer, ctx context.Context, in *VerifyEmailRequest) (any, error) {
			return s.VerifyEmail(ctx, in)
		}),
		unary(MethodGetCurrentUser, func(s PlantShelfServer, ctx context.Context, in *GetCurrentUserRequest) (any, error) {
			return s.GetCurrentUser(ctx, in)
		}),
		unary(MethodConfirmPasswordReset, func(s PlantShelfServer, ctx context.Context, in *ConfirmPasswordResetRequest) (any, error) {
			return s.ConfirmPasswordReset(ctx, in)
		}),
		unary(MethodListPlants, func(s PlantShelfServer, ctx context.Context, in *ListPlantsRequest) (any, error) {
			return s.ListPlants(ctx, in)
		}),
		unary(MethodIsNameUnique, func(s PlantShelfServer, ctx context.Context, in *IsNameUniqueRequest) (any, error) {
			return s.IsNameUnique(ctx, in)
		}),
		unary(MethodAddPlant, func(s PlantShelfServer, ctx context.Context, in *AddPlantRequest) (any, error) { return s.AddPlant(ctx, in) }),
		unary(MethodUpdatePlant, func(s PlantShelfServer, ctx context.Context, in *UpdatePlantRequest) (any, error) {
			return s.UpdatePlant(ctx, in)
		}),
		unary(MethodToggleFavorite, func(s PlantShelfServer, ctx context.Context, in *ToggleFavoriteRequest) (any, error) {
			return s.ToggleFavorite(ctx, in)
		}),
		unary(MethodDeletePlant, func(s PlantShelfServer, ctx context.Context, in *DeletePlantRequest) (any, error) {
			return s.DeletePlant(ctx, in)
		}),
		unary(MethodAttachPhoto, func(s PlantShelfServer, ctx context.Context, in *AttachPhotoRequest) (any, error) {
			return s.AttachPhoto(ctx, in)
		}),
		unary(MethodGetPhotoURL, func(s PlantShelfServer, ctx context.Context, in *GetPhotoURLRequest) (any, error) {
			return s.GetPhotoURL(ctx, in)
		}),
		unary(MethodIsAdmin, func(s PlantShelfServer, ctx context.Context, in *IsAdminRequest) (any, error) { return s.IsAdmin(ctx, in) }),
		unary(MethodDeleteUserByEmail, func(s PlantShelfServer, ctx context.Context, in *AdminEmailRequest) (any, error) {
			return s.DeleteUserByEmail(ctx, in)
		}),
		unary(MethodRevokeSessionsByEmail, func(s PlantShelfServer, ctx context.Context, in *AdminEmailRequest) (any, error) {
			return s.RevokeSessionsByEmail(ctx, in)
		}),
		unary(MethodSendPasswordReset, func(s PlantShelfServer, ctx context.Context, in *AdminEmailRequest) (any, error) {
			return s.SendPasswordReset(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{
		serverStream(MethodWatchPlants, func(s PlantShelfServer, in *WatchPlantsRequest, st grpc.ServerStreamingServer[PlantsSnapshot]) error {
			return s.WatchPlants(in, st)
		}),
		serverStream(MethodWatchIsAdmin, func(s PlantShelfServer, in *WatchIsAdminRequest, st grpc.ServerStreamingServer[AdminStatus]) error {
			return s.WatchIsAdmin(in, st)
		}),
	},
	Metadata: "plantshelf/v1/plantshelf",
}

// RegisterPlantShelfServer registers srv on s.
func RegisterPlantShelfServer(s grpc.ServiceRegistrar, srv PlantShelfServer) {
	s.RegisterService(&ServiceDesc, srv)
}
