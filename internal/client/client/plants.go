package client

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

func (c *GRPCClient) ListPlants(ctx context.Context) ([]shelf.Plant, error) {
	resp, err := c.api.ListPlants(ctx, &rpc.ListPlantsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Plants, nil
}

// PlantsUpdate is one snapshot of the shelf, or the error that ended the
// watch.
type PlantsUpdate struct {
	Plants []shelf.Plant
	Err    error
}

// WatchPlants streams shelf snapshots until ctx is cancelled or the server
// ends the stream. The channel is closed afterwards; a failure is delivered
// as a final update with Err set.
func (c *GRPCClient) WatchPlants(ctx context.Context) (<-chan PlantsUpdate, error) {
	// A unary call first, so an expired access token is refreshed before
	// the stream opens.
	if _, err := c.CurrentUser(ctx); err != nil {
		return nil, err
	}

	stream, err := c.api.WatchPlants(ctx, &rpc.WatchPlantsRequest{})
	if err != nil {
		return nil, mapError(err)
	}

	out := make(chan PlantsUpdate)
	go func() {
		defer close(out)
		for {
			snap, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				select {
				case out <- PlantsUpdate{Err: mapError(err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- PlantsUpdate{Plants: snap.Plants}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *GRPCClient) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	resp, err := c.api.IsNameUnique(ctx, &rpc.IsNameUniqueRequest{Name: name, ExcludeID: excludeID})
	if err != nil {
		return false, mapError(err)
	}
	return resp.Unique, nil
}

// AddPlant validates the draft against today's local date and creates the
// plant. It returns the new id.
func (c *GRPCClient) AddPlant(ctx context.Context, d shelf.Draft) (string, error) {
	today := c.today()
	d = d.Normalize()
	if err := shelf.ValidateDraft(d, today); err != nil {
		return "", err
	}
	resp, err := c.api.AddPlant(ctx, &rpc.AddPlantRequest{Draft: d, Today: today})
	if err != nil {
		return "", mapError(err)
	}
	return resp.ID, nil
}

func (c *GRPCClient) UpdatePlant(ctx context.Context, id string, p shelf.Patch) error {
	today := c.today()
	p = p.Normalize()
	if err := shelf.ValidatePatch(p, today); err != nil {
		return err
	}
	_, err := c.api.UpdatePlant(ctx, &rpc.UpdatePlantRequest{ID: id, Patch: p, Today: today})
	return mapError(err)
}

// ToggleFavorite sets the favorite flag to target, or flips it when target
// is nil, and returns the new value.
func (c *GRPCClient) ToggleFavorite(ctx context.Context, id string, target *bool) (bool, error) {
	resp, err := c.api.ToggleFavorite(ctx, &rpc.ToggleFavoriteRequest{ID: id, Favorite: target})
	if err != nil {
		return false, mapError(err)
	}
	return resp.Favorite, nil
}

func (c *GRPCClient) DeletePlant(ctx context.Context, id string) error {
	_, err := c.api.DeletePlant(ctx, &rpc.DeletePlantRequest{ID: id})
	return mapError(err)
}

// AttachPhoto returns a presigned URL the photo must be PUT to.
func (c *GRPCClient) AttachPhoto(ctx context.Context, id, contentType string) (string, error) {
	resp, err := c.api.AttachPhoto(ctx, &rpc.AttachPhotoRequest{ID: id, ContentType: contentType})
	if err != nil {
		return "", mapError(err)
	}
	return resp.UploadURL, nil
}

func (c *GRPCClient) PhotoURL(ctx context.Context, id string) (string, error) {
	resp, err := c.api.GetPhotoURL(ctx, &rpc.GetPhotoURLRequest{ID: id})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}
