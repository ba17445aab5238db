package rpc

import (
	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Identity

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         account.Identity `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type SendVerificationEmailRequest struct{}

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

type GetCurrentUserRequest struct{}

type UserResponse struct {
	User account.Identity `json:"user"`
}

type ConfirmPasswordResetRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Plants. Today carries the caller's local date for date-range checks.

type ListPlantsRequest struct{}

type PlantsResponse struct {
	Plants []shelf.Plant `json:"plants"`
}

type WatchPlantsRequest struct{}

type PlantsSnapshot struct {
	Plants []shelf.Plant `json:"plants"`
}

type IsNameUniqueRequest struct {
	Name      string `json:"name"`
	ExcludeID string `json:"excludeId,omitempty"`
}

type IsNameUniqueResponse struct {
	Unique bool `json:"unique"`
}

type AddPlantRequest struct {
	Draft shelf.Draft `json:"draft"`
	Today timex.Date  `json:"today"`
}

type AddPlantResponse struct {
	ID string `json:"id"`
}

type UpdatePlantRequest struct {
	ID    string      `json:"id"`
	Patch shelf.Patch `json:"patch"`
	Today timex.Date  `json:"today"`
}

type ToggleFavoriteRequest struct {
	ID       string `json:"id"`
	Favorite *bool  `json:"favorite,omitempty"`
}

type ToggleFavoriteResponse struct {
	Favorite bool `json:"favorite"`
}

type DeletePlantRequest struct {
	ID string `json:"id"`
}

type AttachPhotoRequest struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType,omitempty"`
}

type AttachPhotoResponse struct {
	UploadURL string `json:"uploadUrl"`
}

type GetPhotoURLRequest struct {
	ID string `json:"id"`
}

type PhotoURLResponse struct {
	URL string `json:"url"`
}

// Admin

type IsAdminRequest struct{}

type AdminStatus struct {
	IsAdmin bool `json:"isAdmin"`
}

type WatchIsAdminRequest struct{}

type AdminEmailRequest struct {
	Email string `json:"email"`
}

// AdminResult is the outcome of a privileged procedure.
type AdminResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Link    string `json:"link,omitempty"`
}
