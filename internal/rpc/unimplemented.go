package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedPlantShelfServer answers every method with
// codes.Unimplemented. Embed it to stay compatible as methods are added.
type UnimplementedPlantShelfServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedPlantShelfServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedPlantShelfServer) SignUp(context.Context, *SignUpRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedPlantShelfServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedPlantShelfServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedPlantShelfServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedPlantShelfServer) SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error) {
	return nil, unimplemented(MethodSendVerificationEmail)
}
func (UnimplementedPlantShelfServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodVerifyEmail)
}
func (UnimplementedPlantShelfServer) GetCurrentUser(context.Context, *GetCurrentUserRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodGetCurrentUser)
}
func (UnimplementedPlantShelfServer) ConfirmPasswordReset(context.Context, *ConfirmPasswordResetRequest) (*Empty, error) {
	return nil, unimplemented(MethodConfirmPasswordReset)
}
func (UnimplementedPlantShelfServer) ListPlants(context.Context, *ListPlantsRequest) (*PlantsResponse, error) {
	return nil, unimplemented(MethodListPlants)
}
func (UnimplementedPlantShelfServer) WatchPlants(*WatchPlantsRequest, grpc.ServerStreamingServer[PlantsSnapshot]) error {
	return unimplemented(MethodWatchPlants)
}
func (UnimplementedPlantShelfServer) IsNameUnique(context.Context, *IsNameUniqueRequest) (*IsNameUniqueResponse, error) {
	return nil, unimplemented(MethodIsNameUnique)
}
func (UnimplementedPlantShelfServer) AddPlant(context.Context, *AddPlantRequest) (*AddPlantResponse, error) {
	return nil, unimplemented(MethodAddPlant)
}
func (UnimplementedPlantShelfServer) UpdatePlant(context.Context, *UpdatePlantRequest) (*Empty, error) {
	return nil, unimplemented(MethodUpdatePlant)
}
func (UnimplementedPlantShelfServer) ToggleFavorite(context.Context, *ToggleFavoriteRequest) (*ToggleFavoriteResponse, error) {
	return nil, unimplemented(MethodToggleFavorite)
}
func (UnimplementedPlantShelfServer) DeletePlant(context.Context, *DeletePlantRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeletePlant)
}
func (UnimplementedPlantShelfServer) AttachPhoto(context.Context, *AttachPhotoRequest) (*AttachPhotoResponse, error) {
	return nil, unimplemented(MethodAttachPhoto)
}
func (UnimplementedPlantShelfServer) GetPhotoURL(context.Context, *GetPhotoURLRequest) (*PhotoURLResponse, error) {
	return nil, unimplemented(MethodGetPhotoURL)
}
func (UnimplementedPlantShelfServer) IsAdmin(context.Context, *IsAdminRequest) (*AdminStatus, error) {
	return nil, unimplemented(MethodIsAdmin)
}
func (UnimplementedPlantShelfServer) WatchIsAdmin(*WatchIsAdminRequest, grpc.ServerStreamingServer[AdminStatus]) error {
	return unimplemented(MethodWatchIsAdmin)
}
func (UnimplementedPlantShelfServer) DeleteUserByEmail(context.Context, *AdminEmailRequest) (*AdminResult, error) {
	return nil, unimplemented(MethodDeleteUserByEmail)
}
func (UnimplementedPlantShelfServer) RevokeSessionsByEmail(context.Context, *AdminEmailRequest) (*AdminResult, error) {
	return nil, unimplemented(MethodRevokeSessionsByEmail)
}
func (UnimplementedPlantShelfServer) SendPasswordReset(context.Context, *AdminEmailRequest) (*AdminResult, error) {
	return nil, unimplemented(MethodSendPasswordReset)
}
