// Package shelf holds the plant types shared by the server and the client,
// together with the input rules and the shelf ordering.
package shelf

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

// Plant is one plant on a user's shelf as seen by clients.
type Plant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Nickname    string     `json:"nickname,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	NextWaterAt timex.Date `json:"nextWaterAt"`
	Favorite    bool       `json:"favorite"`
	HasPhoto    bool       `json:"hasPhoto,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Draft is the input of a new plant. Empty optional strings mean absent.
type Draft struct {
	Name        string     `json:"name"`
	Nickname    string     `json:"nickname,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	NextWaterAt timex.Date `json:"nextWaterAt"`
	Favorite    bool       `json:"favorite,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged; a non-nil empty
// Nickname or Notes clears the field. ClearNextWaterAt removes the date and
// wins over NextWaterAt.
type Patch struct {
	Name             *string     `json:"name,omitempty"`
	Nickname         *string     `json:"nickname,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	NextWaterAt      *timex.Date `json:"nextWaterAt,omitempty"`
	ClearNextWaterAt bool        `json:"clearNextWaterAt,omitempty"`
	Favorite         *bool       `json:"favorite,omitempty"`
}

// IsEmpty reports whether the patch changes nothing but the timestamp.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Nickname == nil && p.Notes == nil &&
		p.NextWaterAt == nil && !p.ClearNextWaterAt && p.Favorite == nil
}

// NameKey is the case-insensitive key used for uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize trims the draft's strings.
func (d Draft) Normalize() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Nickname = strings.TrimSpace(d.Nickname)
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// Normalize trims every provided string of the patch.
func (p Patch) Normalize() Patch {
	p.Name = trimPtr(p.Name)
	p.Nickname = trimPtr(p.Nickname)
	p.Notes = trimPtr(p.Notes)
	if p.ClearNextWaterAt {
		p.NextWaterAt = nil
	}
	return p
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
