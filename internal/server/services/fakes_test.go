package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/config"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/admins"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/plants"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/shelves"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/users"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// recLogger remembers warnings.
type recLogger struct {
	nopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recLogger) With(...any) logging.Logger { return l }

// --- transactions ---

// newTxDB returns a sqlmock database that accepts any number of
// transactions. Repositories are fakes, so no statements reach it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 50; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		ActionTokenValidityDuration:  time.Hour,
		VerifyEmailURL:               "https://plantshelf.test/verify",
		PasswordResetURL:             "https://plantshelf.test/reset",
	}
}

// --- in-memory store behind every fake repository ---

type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	refresh map[string]*models.RefreshToken
	action  map[string]*models.ActionToken
	admins  map[string]bool
	shelves map[string]bool
	plants  map[string]*models.Plant
	nextID  int

	// fail makes the named operation return the error.
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		refresh: map[string]*models.RefreshToken{},
		action:  map[string]*models.ActionToken{},
		admins:  map[string]bool{},
		shelves: map[string]bool{},
		plants:  map[string]*models.Plant{},
		fail:    map[string]error{},
	}
}

func (m *memStore) failing(op string) error { return m.fail[op] }

type fakeRepoManager struct{ st *memStore }

func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository { return &fakeUsers{f.st} }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &fakeRefresh{f.st}
}
func (f *fakeRepoManager) ActionTokens(dbx.DBTX) actiontokens.Repository { return &fakeActions{f.st} }
func (f *fakeRepoManager) Admins(dbx.DBTX) admins.Repository             { return &fakeAdmins{f.st} }
func (f *fakeRepoManager) Shelves(dbx.DBTX) shelves.Repository           { return &fakeShelves{f.st} }
func (f *fakeRepoManager) Plants(dbx.DBTX) plants.Repository             { return &fakePlants{f.st} }
func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }

type fakeUsers struct{ st *memStore }

func (r *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("users.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.st.users {
		if x.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
	}
	r.st.nextID++
	u.ID = fmt.Sprintf("user-%d", r.st.nextID)
	u.TokensValidAfter = time.Unix(0, 0)
	u.CreatedAt = time.Now()
	cp := *u
	r.st.users[u.ID] = &cp
	return u, nil
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.st.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsers) update(id string, fn func(u *models.User)) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUsers) SetEmailVerified(_ context.Context, id string) error {
	return r.update(id, func(u *models.User) { u.EmailVerified = true })
}

func (r *fakeUsers) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *fakeUsers) SetTokensValidAfter(_ context.Context, id string, t time.Time) error {
	return r.update(id, func(u *models.User) { u.TokensValidAfter = t })
}

func (r *fakeUsers) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("users.Delete"); err != nil {
		return err
	}
	delete(r.st.users, id)
	for k, t := range r.st.refresh {
		if t.UserID == id {
			delete(r.st.refresh, k)
		}
	}
	for k, t := range r.st.action {
		if t.UserID == id {
			delete(r.st.action, k)
		}
	}
	return nil
}

type fakeRefresh struct{ st *memStore }

func (r *fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("refresh.Create"); err != nil {
		return err
	}
	r.st.refresh[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRefresh) Delete(_ context.Context, token string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.refresh, token)
	return nil
}

func (r *fakeRefresh) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var n int64
	for k, t := range r.st.refresh {
		if t.UserID == userID {
			delete(r.st.refresh, k)
			n++
		}
	}
	return n, nil
}

type fakeActions struct{ st *memStore }

func (r *fakeActions) Create(_ context.Context, t *models.ActionToken) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *t
	r.st.action[t.Hash] = &cp
	return nil
}

func (r *fakeActions) Consume(_ context.Context, hash string, kind models.ActionKind) (*models.ActionToken, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.action[hash]
	if !ok || t.Kind != kind {
		return nil, common.ErrorNotFound
	}
	delete(r.st.action, hash)
	return t, nil
}

func (r *fakeActions) DeleteForUser(_ context.Context, userID string, kind models.ActionKind) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for k, t := range r.st.action {
		if t.UserID == userID && t.Kind == kind {
			delete(r.st.action, k)
		}
	}
	return nil
}

type fakeAdmins struct{ st *memStore }

func (r *fakeAdmins) Exists(_ context.Context, email string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("admins.Exists"); err != nil {
		return false, err
	}
	return r.st.admins[common.NormalizeEmail(email)], nil
}

func (r *fakeAdmins) Add(_ context.Context, email string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.admins[common.NormalizeEmail(email)] = true
	return nil
}

type fakeShelves struct{ st *memStore }

func (r *fakeShelves) Ensure(_ context.Context, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.shelves[userID] = true
	return nil
}

func (r *fakeShelves) Delete(_ context.Context, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("shelves.Delete"); err != nil {
		return err
	}
	delete(r.st.shelves, userID)
	return nil
}

type fakePlants struct{ st *memStore }

func (r *fakePlants) ListByUser(_ context.Context, userID string) ([]models.Plant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("plants.ListByUser"); err != nil {
		return nil, err
	}
	out := []models.Plant{}
	for _, p := range r.st.plants {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePlants) get(userID, id string) (*models.Plant, error) {
	p, ok := r.st.plants[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (r *fakePlants) Get(_ context.Context, userID, id string) (*models.Plant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, err := r.get(userID, id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlants) taken(userID, nameLower, excludeID string) bool {
	for _, p := range r.st.plants {
		if p.UserID == userID && p.NameLower == nameLower && p.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *fakePlants) NameTaken(_ context.Context, userID, nameLower, excludeID string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.taken(userID, nameLower, excludeID), nil
}

func (r *fakePlants) Create(_ context.Context, p *models.Plant) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.taken(p.UserID, p.NameLower, "") {
		return common.ErrDuplicateName
	}
	cp := *p
	r.st.plants[p.ID] = &cp
	return nil
}

func stamp(prev, now time.Time) time.Time {
	if next := prev.Add(time.Microsecond); now.Before(next) {
		return next
	}
	return now
}

func (r *fakePlants) Update(_ context.Context, userID, id string, patch shelf.Patch, now time.Time) (*models.Plant, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, err := r.get(userID, id)
	if err != nil {
		return nil, err
	}
	next := *p
	if patch.Name != nil {
		next.Name = *patch.Name
		next.NameLower = strings.ToLower(*patch.Name)
		if r.taken(userID, next.NameLower, id) {
			return nil, common.ErrDuplicateName
		}
	}
	if patch.Nickname != nil {
		next.Nickname = *patch.Nickname
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if patch.ClearNextWaterAt {
		next.NextWaterAt = timex.Date{}
	} else if patch.NextWaterAt != nil {
		next.NextWaterAt = *patch.NextWaterAt
	}
	if patch.Favorite != nil {
		next.Favorite = *patch.Favorite
	}
	next.UpdatedAt = stamp(p.UpdatedAt, now)
	*p = next
	cp := next
	return &cp, nil
}

func (r *fakePlants) SetFavorite(_ context.Context, userID, id string, fav *bool, now time.Time) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, err := r.get(userID, id)
	if err != nil {
		return false, err
	}
	if fav != nil {
		p.Favorite = *fav
	} else {
		p.Favorite = !p.Favorite
	}
	p.UpdatedAt = stamp(p.UpdatedAt, now)
	return p.Favorite, nil
}

func (r *fakePlants) SetPhotoKey(_ context.Context, userID, id, key string, now time.Time) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, err := r.get(userID, id)
	if err != nil {
		return err
	}
	p.PhotoKey = key
	p.UpdatedAt = stamp(p.UpdatedAt, now)
	return nil
}

func (r *fakePlants) Delete(_ context.Context, userID, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if p, ok := r.st.plants[id]; ok && p.UserID == userID {
		delete(r.st.plants, id)
	}
	return nil
}

func (r *fakePlants) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.st.failing("plants.DeleteAllByUser"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.st.plants {
		if p.UserID == userID {
			delete(r.st.plants, id)
			n++
		}
	}
	return n, nil
}

// --- object store ---

type fakeStore struct {
	mu       sync.Mutex
	puts     []string
	deleted  []string
	failList error
}

func (f *fakeStore) PresignPut(_ context.Context, key, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, key)
	return "https://s3.test/put/" + key, nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (f *fakeStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return 0, f.failList
	}
	f.deleted = append(f.deleted, prefix)
	return 1, nil
}

// --- mailer ---

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
