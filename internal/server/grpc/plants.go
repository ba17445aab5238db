package grpc

import (
	"context"

	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
	"google.golang.org/grpc"
)

// today keeps the caller's date within a day of the server's UTC date,
// which spans every time zone. A missing date means the server's.
func (s *GRPCServer) today(client timex.Date) timex.Date {
	server := timex.DateOf(s.now().UTC())
	switch {
	case client.IsZero():
		return server
	case client.Before(server.AddDays(-1)):
		return server.AddDays(-1)
	case client.After(server.AddDays(1)):
		return server.AddDays(1)
	}
	return client
}

func (s *GRPCServer) ListPlants(ctx context.Context, req *rpc.ListPlantsRequest) (*rpc.PlantsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	plants, err := s.plants.ListPlants(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.PlantsResponse{Plants: plants}, nil
}

// WatchPlants sends the shelf once and again after every change until the
// caller goes away.
func (s *GRPCServer) WatchPlants(req *rpc.WatchPlantsRequest, stream grpc.ServerStreamingServer[rpc.PlantsSnapshot]) error {
	ctx := stream.Context()
	id, err := caller(ctx)
	if err != nil {
		return err
	}

	snapshots, err := s.plants.ObservePlants(ctx, id.UserID)
	if err != nil {
		return s.toStatus(ctx, err)
	}

	for snap := range snapshots {
		if snap.Err != nil {
			return s.toStatus(ctx, snap.Err)
		}
		if err := s.checkSession(ctx); err != nil {
			return err
		}
		if err := stream.Send(&rpc.PlantsSnapshot{Plants: snap.Plants}); err != nil {
			return err
		}
	}
	return nil
}

func (s *GRPCServer) IsNameUnique(ctx context.Context, req *rpc.IsNameUniqueRequest) (*rpc.IsNameUniqueResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	unique, err := s.plants.IsNameUnique(ctx, id.UserID, req.Name, req.ExcludeID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.IsNameUniqueResponse{Unique: unique}, nil
}

func (s *GRPCServer) AddPlant(ctx context.Context, req *rpc.AddPlantRequest) (*rpc.AddPlantResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	draft := req.Draft.Normalize()
	if err := shelf.ValidateDraft(draft, s.today(req.Today)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	plantID, err := s.plants.AddPlant(ctx, id.UserID, draft)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AddPlantResponse{ID: plantID}, nil
}

func (s *GRPCServer) UpdatePlant(ctx context.Context, req *rpc.UpdatePlantRequest) (*rpc.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	patch := req.Patch.Normalize()
	if err := shelf.ValidatePatch(patch, s.today(req.Today)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.plants.UpdatePlant(ctx, id.UserID, req.ID, patch); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ToggleFavorite(ctx context.Context, req *rpc.ToggleFavoriteRequest) (*rpc.ToggleFavoriteResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	fav, err := s.plants.ToggleFavorite(ctx, id.UserID, req.ID, req.Favorite)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ToggleFavoriteResponse{Favorite: fav}, nil
}

func (s *GRPCServer) DeletePlant(ctx context.Context, req *rpc.DeletePlantRequest) (*rpc.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.plants.DeletePlant(ctx, id.UserID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

const unsupportedPhotoMsg = "Photo must be JPEG, PNG or WebP."

func (s *GRPCServer) AttachPhoto(ctx context.Context, req *rpc.AttachPhotoRequest) (*rpc.AttachPhotoResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return nil, s.toStatus(ctx, &shelf.ValidationError{Fields: []shelf.FieldError{{Field: "contentType", Message: unsupportedPhotoMsg}}})
	}

	url, err := s.plants.AttachPhoto(ctx, id.UserID, req.ID, contentType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AttachPhotoResponse{UploadURL: url}, nil
}

func (s *GRPCServer) GetPhotoURL(ctx context.Context, req *rpc.GetPhotoURLRequest) (*rpc.PhotoURLResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.plants.PhotoURL(ctx, id.UserID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.PhotoURLResponse{URL: url}, nil
}
