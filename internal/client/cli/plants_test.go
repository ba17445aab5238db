package cli

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/plantshelf/internal/client/client"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func samplePlants() []shelf.Plant {
	return []shelf.Plant{
		{ID: "a", Name: "Aloe", CreatedAt: t0},
		{ID: "b", Name: "Basil", NextWaterAt: timex.NewDate(2024, 6, 2), CreatedAt: t0},
		{ID: "d", Name: "Dill", Favorite: true, HasPhoto: true, CreatedAt: t0},
	}
}

func TestPlantsList_ShelfOrder(t *testing.T) {
	api := &fakeAPI{plants: samplePlants()}

	h, err := run(t, api, "", "plants", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Dill")
	assert.Contains(t, lines[2], "Basil")
	assert.Contains(t, lines[2], "2024-06-02")
	assert.Contains(t, lines[3], "Aloe")
}

func TestPlantsList_Favorites(t *testing.T) {
	api := &fakeAPI{plants: samplePlants()}

	h, err := run(t, api, "", "plants", "list", "--favorites")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Dill")
	assert.NotContains(t, h.out.String(), "Aloe")

	api.plants = nil
	h, err = run(t, api, "", "plants", "list", "--favorites")
	require.NoError(t, err)
	assert.Equal(t, "No favorite plants yet.\n", h.out.String())
}

func TestPlantsWatch(t *testing.T) {
	api := &fakeAPI{updates: []client.PlantsUpdate{
		{Plants: nil},
		{Plants: samplePlants()},
		{Err: common.WithMessage(client.ErrUnavailable, "change notifications unavailable")},
	}}

	h, err := run(t, api, "", "plants", "watch")
	require.Error(t, err)
	assert.Contains(t, h.out.String(), "Your shelf is empty.")
	assert.Contains(t, h.out.String(), "Dill")
	assert.Equal(t, "watch plants failed: unavailable — change notifications unavailable\n", h.errOut.String())
}

func TestPlantsAdd(t *testing.T) {
	api := &fakeAPI{unique: true}

	h, err := run(t, api, "", "plants", "add", "--name", "Fig", "--nickname", "Figgy", "--water", "2030-01-02", "--favorite")
	require.NoError(t, err)

	assert.Equal(t, []any{"Fig", ""}, api.called("IsNameUnique").args)
	d := api.called("AddPlant").args[0].(shelf.Draft)
	assert.Equal(t, shelf.Draft{Name: "Fig", Nickname: "Figgy", NextWaterAt: timex.NewDate(2030, 1, 2), Favorite: true}, d)
	assert.Equal(t, "Added Fig (p1).\n", h.out.String())
}

func TestPlantsAdd_PromptsForName(t *testing.T) {
	api := &fakeAPI{unique: true}

	_, err := run(t, api, "Fig\n", "plants", "add")
	require.NoError(t, err)
	assert.Equal(t, "Fig", api.called("AddPlant").args[0].(shelf.Draft).Name)
}

func TestPlantsAdd_DuplicateName(t *testing.T) {
	api := &fakeAPI{unique: false}

	h, err := run(t, api, "", "plants", "add", "--name", "fig")
	require.Error(t, err)
	assert.Nil(t, api.called("AddPlant"))
	assert.Equal(t, "add plant failed: already-exists — A plant with this name already exists.\n", h.errOut.String())
}

func TestPlantsAdd_BadDate(t *testing.T) {
	api := &fakeAPI{unique: true}

	h, err := run(t, api, "", "plants", "add", "--name", "Fig", "--water", "tomorrow")
	require.Error(t, err)
	assert.Nil(t, api.called("IsNameUnique"))
	assert.Contains(t, h.errOut.String(), "add plant failed: invalid-argument — ")
}

func TestPlantsEdit_OnlyChangedFields(t *testing.T) {
	api := &fakeAPI{unique: true}

	_, err := run(t, api, "", "plants", "edit", "p1", "--nickname", "", "--clear-water")
	require.NoError(t, err)

	assert.Nil(t, api.called("IsNameUnique"), "name unchanged")
	c := api.called("UpdatePlant")
	require.NotNil(t, c)
	assert.Equal(t, "p1", c.args[0])
	p := c.args[1].(shelf.Patch)
	require.NotNil(t, p.Nickname)
	assert.Equal(t, "", *p.Nickname)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Notes)
	assert.Nil(t, p.Favorite)
	assert.True(t, p.ClearNextWaterAt)
}

func TestPlantsEdit_RenameChecksOtherPlants(t *testing.T) {
	api := &fakeAPI{unique: true}

	_, err := run(t, api, "", "plants", "edit", "p1", "--name", "Ficus", "--favorite=false")
	require.NoError(t, err)
	assert.Equal(t, []any{"Ficus", "p1"}, api.called("IsNameUnique").args)
	p := api.called("UpdatePlant").args[1].(shelf.Patch)
	assert.Equal(t, "Ficus", *p.Name)
	assert.False(t, *p.Favorite)
}

func TestPlantsEdit_NotFound(t *testing.T) {
	api := &fakeAPI{err: common.WithMessage(common.ErrorNotFound, "not found")}

	h, err := run(t, api, "", "plants", "edit", "nope", "--notes", "x")
	require.Error(t, err)
	assert.Equal(t, "edit plant failed: not-found — not found\n", h.errOut.String())
}

func TestPlantsFav(t *testing.T) {
	api := &fakeAPI{favored: true}

	h, err := run(t, api, "", "plants", "fav", "p1")
	require.NoError(t, err)
	assert.Nil(t, api.called("ToggleFavorite").args[1].(*bool))
	assert.Equal(t, "Marked as favorite.\n", h.out.String())

	api = &fakeAPI{favored: false}
	h, err = run(t, api, "", "plants", "fav", "p1", "--off")
	require.NoError(t, err)
	assert.False(t, *api.called("ToggleFavorite").args[1].(*bool))
	assert.Equal(t, "Removed from favorites.\n", h.out.String())
}

func TestPlantsRm_Confirms(t *testing.T) {
	api := &fakeAPI{}

	h, err := run(t, api, "n\n", "plants", "rm", "p1")
	require.NoError(t, err)
	assert.Nil(t, api.called("DeletePlant"))
	assert.Contains(t, h.out.String(), "Cancelled.")

	_, err = run(t, api, "yes\n", "plants", "rm", "p1")
	require.NoError(t, err)
	assert.Equal(t, []any{"p1"}, api.called("DeletePlant").args)
}

func TestPlantsPhoto_SetAndGet(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))
	var uploaded []byte
	var uploadedType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			uploaded, _ = io.ReadAll(r.Body)
			uploadedType = r.Header.Get("Content-Type")
		case http.MethodGet:
			_, _ = w.Write(uploaded)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	in := filepath.Join(dir, "fig.png")
	require.NoError(t, os.WriteFile(in, png, 0o600))

	api := &fakeAPI{putURL: srv.URL + "/put", getURL: srv.URL + "/get"}
	_, err := run(t, api, "", "plants", "photo", "set", "p1", in)
	require.NoError(t, err)
	assert.Equal(t, []any{"p1", "image/png"}, api.called("AttachPhoto").args)
	assert.Equal(t, "image/png", uploadedType)
	assert.Equal(t, png, uploaded)

	out := filepath.Join(dir, "copy.png")
	h, err := run(t, api, "", "plants", "photo", "get", "p1", out)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, png, got)
	assert.Contains(t, h.out.String(), "Saved")
}

func TestPlantsPhoto_GetFailureRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "copy.png")
	api := &fakeAPI{getURL: srv.URL}
	h, err := run(t, api, "", "plants", "photo", "get", "p1", out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
	assert.Contains(t, h.errOut.String(), "download photo failed: unknown — download failed: 403 Forbidden")
}

func TestFailureOutputFormat(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	h, err := run(t, api, "", "plants", "list")
	require.Error(t, err)
	assert.Equal(t, "list plants failed: unknown — boom\n", h.errOut.String())
}
