package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
	"github.com/dmitrijs2005/plantshelf/internal/server/notify"
	"github.com/dmitrijs2005/plantshelf/internal/server/objectstore"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

// ErrSubscriptionClosed ends a plant observation whose change feed went away.
var ErrSubscriptionClosed = errors.New("plant subscription closed")

// PlantsSnapshot is one full read of a shelf. A snapshot with Err is the
// last one delivered.
type PlantsSnapshot struct {
	Plants []shelf.Plant
	Err    error
}

// PlantService manages the plants of a user's shelf. Inputs are expected
// to be validated by the caller; name uniqueness is backed by a database
// index.
type PlantService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	broker      notify.Broker
	store       objectstore.Store
	logger      logging.Logger
	now         func() time.Time
}

func NewPlantService(db *sql.DB, m repomanager.RepositoryManager, broker notify.Broker, store objectstore.Store, logger logging.Logger) *PlantService {
	return &PlantService{
		db:          db,
		repomanager: m,
		broker:      broker,
		store:       store,
		logger:      logger.With("module", "plants"),
		now:         time.Now,
	}
}

// ListPlants returns the shelf in display order.
func (s *PlantService) ListPlants(ctx context.Context, userID string) ([]shelf.Plant, error) {
	rows, err := s.repomanager.Plants(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]shelf.Plant, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Public())
	}
	return shelf.View(out, false), nil
}

// ObservePlants streams the shelf: the current snapshot first, then a fresh
// one after each change. Changes arriving faster than they are read
// coalesce. The channel closes when ctx is cancelled or after a snapshot
// carrying Err.
func (s *PlantService) ObservePlants(ctx context.Context, userID string) (<-chan PlantsSnapshot, error) {
	sub, err := s.broker.Subscribe(ctx, common.PlantsTopic(userID))
	if err != nil {
		return nil, err
	}

	out := make(chan PlantsSnapshot, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			plants, err := s.ListPlants(ctx, userID)
			if ctx.Err() != nil {
				return
			}
			if !sendSnapshot(ctx, out, PlantsSnapshot{Plants: plants, Err: err}) || err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C:
				if ctx.Err() != nil {
					return
				}
				if !ok {
					sendSnapshot(ctx, out, PlantsSnapshot{Err: ErrSubscriptionClosed})
					return
				}
			}
		}
	}()

	return out, nil
}

func sendSnapshot(ctx context.Context, out chan<- PlantsSnapshot, snap PlantsSnapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// IsNameUnique reports whether no plant other than excludeID uses name,
// compared case-insensitively.
func (s *PlantService) IsNameUnique(ctx context.Context, userID, name, excludeID string) (bool, error) {
	taken, err := s.repomanager.Plants(s.db).NameTaken(ctx, userID, shelf.NameKey(name), excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// AddPlant stores a new plant and returns its id. The shelf is created on
// first use.
func (s *PlantService) AddPlant(ctx context.Context, userID string, draft shelf.Draft) (string, error) {
	d := draft.Normalize()
	now := s.now().UTC()

	p := &models.Plant{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        d.Name,
		NameLower:   shelf.NameKey(d.Name),
		Nickname:    d.Nickname,
		Notes:       d.Notes,
		NextWaterAt: d.NextWaterAt,
		Favorite:    d.Favorite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Shelves(tx).Ensure(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Plants(tx).Create(ctx, p)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "plant added", "user_id", userID, "plant_id", p.ID)
	return p.ID, nil
}

// validPlantID reports whether id could name a stored plant. Ids are
// UUIDs, and anything else would be rejected by the database as malformed
// rather than missing.
func validPlantID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// UpdatePlant applies the provided fields only and always stamps updatedAt.
func (s *PlantService) UpdatePlant(ctx context.Context, userID, id string, patch shelf.Patch) error {
	if !validPlantID(id) {
		return common.ErrorNotFound
	}
	_, err := s.repomanager.Plants(s.db).Update(ctx, userID, id, patch.Normalize(), s.now().UTC())
	return err
}

// ToggleFavorite sets the flag to next, or flips it when next is nil, and
// returns the new value.
func (s *PlantService) ToggleFavorite(ctx context.Context, userID, id string, next *bool) (bool, error) {
	if !validPlantID(id) {
		return false, common.ErrorNotFound
	}
	return s.repomanager.Plants(s.db).SetFavorite(ctx, userID, id, next, s.now().UTC())
}

// DeletePlant removes the plant permanently. Missing plants are fine. The
// photo is removed best-effort.
func (s *PlantService) DeletePlant(ctx context.Context, userID, id string) error {
	if !validPlantID(id) {
		return nil
	}
	if err := s.repomanager.Plants(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.store.DeletePrefix(ctx, photoPrefix(userID, id)); err != nil {
		s.logger.Warn(ctx, "photo cleanup failed", "user_id", userID, "plant_id", id, "error", err)
	}
	return nil
}

// AttachPhoto assigns a new photo object to the plant and returns a URL the
// client uploads it to. A previous photo is removed best-effort.
func (s *PlantService) AttachPhoto(ctx context.Context, userID, id, contentType string) (string, error) {
	if !validPlantID(id) {
		return "", common.ErrorNotFound
	}
	plants := s.repomanager.Plants(s.db)

	p, err := plants.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}

	key := objectstore.PhotoKey(userID, id)
	uploadURL, err := s.store.PresignPut(ctx, key, contentType)
	if err != nil {
		return "", err
	}
	if err := plants.SetPhotoKey(ctx, userID, id, key, s.now().UTC()); err != nil {
		return "", err
	}

	if p.PhotoKey != "" {
		if _, err := s.store.DeletePrefix(ctx, p.PhotoKey); err != nil {
			s.logger.Warn(ctx, "old photo cleanup failed", "user_id", userID, "plant_id", id, "error", err)
		}
	}
	return uploadURL, nil
}

// PhotoURL returns a download URL for the plant photo.
func (s *PlantService) PhotoURL(ctx context.Context, userID, id string) (string, error) {
	if !validPlantID(id) {
		return "", common.ErrorNotFound
	}
	p, err := s.repomanager.Plants(s.db).Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if p.PhotoKey == "" {
		return "", common.ErrorNotFound
	}
	return s.store.PresignGet(ctx, p.PhotoKey)
}

func photoPrefix(userID, plantID string) string {
	return objectstore.UserPrefix(userID) + "plants/" + plantID + "/"
}
