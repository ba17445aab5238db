package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// PlantShelfClient is the client side of PlantShelfServer.
type PlantShelfClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)

	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error)
	SendVerificationEmail(ctx context.Context, in *SendVerificationEmailRequest, opts ...grpc.CallOption) (*Empty, error)
	VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetCurrentUser(ctx context.Context, in *GetCurrentUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	ConfirmPasswordReset(ctx context.Context, in *ConfirmPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error)

	ListPlants(ctx context.Context, in *ListPlantsRequest, opts ...grpc.CallOption) (*PlantsResponse, error)
	WatchPlants(ctx context.Context, in *WatchPlantsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PlantsSnapshot], error)
	IsNameUnique(ctx context.Context, in *IsNameUniqueRequest, opts ...grpc.CallOption) (*IsNameUniqueResponse, error)
	AddPlant(ctx context.Context, in *AddPlantRequest, opts ...grpc.CallOption) (*AddPlantResponse, error)
	UpdatePlant(ctx context.Context, in *UpdatePlantRequest, opts ...grpc.CallOption) (*Empty, error)
	ToggleFavorite(ctx context.Context, in *ToggleFavoriteRequest, opts ...grpc.CallOption) (*ToggleFavoriteResponse, error)
	DeletePlant(ctx context.Context, in *DeletePlantRequest, opts ...grpc.CallOption) (*Empty, error)
	AttachPhoto(ctx context.Context, in *AttachPhotoRequest, opts ...grpc.CallOption) (*AttachPhotoResponse, error)
	GetPhotoURL(ctx context.Context, in *GetPhotoURLRequest, opts ...grpc.CallOption) (*PhotoURLResponse, error)

	IsAdmin(ctx context.Context, in *IsAdminRequest, opts ...grpc.CallOption) (*AdminStatus, error)
	WatchIsAdmin(ctx context.Context, in *WatchIsAdminRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[AdminStatus], error)
	DeleteUserByEmail(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error)
	RevokeSessionsByEmail(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error)
	SendPasswordReset(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error)
}

type plantShelfClient struct {
	cc grpc.ClientConnInterface
}

func NewPlantShelfClient(cc grpc.ClientConnInterface) PlantShelfClient {
	return &plantShelfClient{cc: cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func openStream[Req, Res any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Res], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := cc.NewStream(ctx, desc, FullMethod(desc.StreamName), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Res]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *plantShelfClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *plantShelfClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *plantShelfClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *plantShelfClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *plantShelfClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *plantShelfClient) SendVerificationEmail(ctx context.Context, in *SendVerificationEmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSendVerificationEmail, in, opts)
}

func (c *plantShelfClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodVerifyEmail, in, opts)
}

func (c *plantShelfClient) GetCurrentUser(ctx context.Context, in *GetCurrentUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodGetCurrentUser, in, opts)
}

func (c *plantShelfClient) ConfirmPasswordReset(ctx context.Context, in *ConfirmPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodConfirmPasswordReset, in, opts)
}

func (c *plantShelfClient) ListPlants(ctx context.Context, in *ListPlantsRequest, opts ...grpc.CallOption) (*PlantsResponse, error) {
	return invoke[PlantsResponse](ctx, c.cc, MethodListPlants, in, opts)
}

func (c *plantShelfClient) WatchPlants(ctx context.Context, in *WatchPlantsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PlantsSnapshot], error) {
	return openStream[WatchPlantsRequest, PlantsSnapshot](ctx, c.cc, &ServiceDesc.Streams[0], in, opts)
}

func (c *plantShelfClient) IsNameUnique(ctx context.Context, in *IsNameUniqueRequest, opts ...grpc.CallOption) (*IsNameUniqueResponse, error) {
	return invoke[IsNameUniqueResponse](ctx, c.cc, MethodIsNameUnique, in, opts)
}

func (c *plantShelfClient) AddPlant(ctx context.Context, in *AddPlantRequest, opts ...grpc.CallOption) (*AddPlantResponse, error) {
	return invoke[AddPlantResponse](ctx, c.cc, MethodAddPlant, in, opts)
}

func (c *plantShelfClient) UpdatePlant(ctx context.Context, in *UpdatePlantRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpdatePlant, in, opts)
}

func (c *plantShelfClient) ToggleFavorite(ctx context.Context, in *ToggleFavoriteRequest, opts ...grpc.CallOption) (*ToggleFavoriteResponse, error) {
	return invoke[ToggleFavoriteResponse](ctx, c.cc, MethodToggleFavorite, in, opts)
}

func (c *plantShelfClient) DeletePlant(ctx context.Context, in *DeletePlantRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeletePlant, in, opts)
}

func (c *plantShelfClient) AttachPhoto(ctx context.Context, in *AttachPhotoRequest, opts ...grpc.CallOption) (*AttachPhotoResponse, error) {
	return invoke[AttachPhotoResponse](ctx, c.cc, MethodAttachPhoto, in, opts)
}

func (c *plantShelfClient) GetPhotoURL(ctx context.Context, in *GetPhotoURLRequest, opts ...grpc.CallOption) (*PhotoURLResponse, error) {
	return invoke[PhotoURLResponse](ctx, c.cc, MethodGetPhotoURL, in, opts)
}

func (c *plantShelfClient) IsAdmin(ctx context.Context, in *IsAdminRequest, opts ...grpc.CallOption) (*AdminStatus, error) {
	return invoke[AdminStatus](ctx, c.cc, MethodIsAdmin, in, opts)
}

func (c *plantShelfClient) WatchIsAdmin(ctx context.Context, in *WatchIsAdminRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[AdminStatus], error) {
	return openStream[WatchIsAdminRequest, AdminStatus](ctx, c.cc, &ServiceDesc.Streams[1], in, opts)
}

func (c *plantShelfClient) DeleteUserByEmail(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error) {
	return invoke[AdminResult](ctx, c.cc, MethodDeleteUserByEmail, in, opts)
}

func (c *plantShelfClient) RevokeSessionsByEmail(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error) {
	return invoke[AdminResult](ctx, c.cc, MethodRevokeSessionsByEmail, in, opts)
}

func (c *plantShelfClient) SendPasswordReset(ctx context.Context, in *AdminEmailRequest, opts ...grpc.CallOption) (*AdminResult, error) {
	return invoke[AdminResult](ctx, c.cc, MethodSendPasswordReset, in, opts)
}
