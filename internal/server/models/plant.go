package models

import (
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

// Plant is a row of the plants table. Empty Nickname, Notes and PhotoKey
// are stored as NULL.
type Plant struct {
	ID          string
	UserID      string
	Name        string
	NameLower   string
	Nickname    string
	Notes       string
	NextWaterAt timex.Date
	Favorite    bool
	PhotoKey    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Public strips server-only fields.
func (p *Plant) Public() shelf.Plant {
	return shelf.Plant{
		ID:          p.ID,
		Name:        p.Name,
		Nickname:    p.Nickname,
		Notes:       p.Notes,
		NextWaterAt: p.NextWaterAt,
		Favorite:    p.Favorite,
		HasPhoto:    p.PhotoKey != "",
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
