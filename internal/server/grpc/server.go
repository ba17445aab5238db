// Package grpc exposes the identity, plant and admin services over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/server/metrics"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"google.golang.org/grpc"
)

type identityService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*services.TokenPair, *account.Identity, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, *account.Identity, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	SendVerificationEmail(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, code string) (*account.Identity, error)
	CurrentUser(ctx context.Context, userID string) (*account.Identity, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (*account.Identity, error)
	CheckSession(ctx context.Context, accessToken string) error
}

type plantService interface {
	ListPlants(ctx context.Context, userID string) ([]shelf.Plant, error)
	ObservePlants(ctx context.Context, userID string) (<-chan services.PlantsSnapshot, error)
	IsNameUnique(ctx context.Context, userID, name, excludeID string) (bool, error)
	AddPlant(ctx context.Context, userID string, draft shelf.Draft) (string, error)
	UpdatePlant(ctx context.Context, userID, id string, patch shelf.Patch) error
	ToggleFavorite(ctx context.Context, userID, id string, next *bool) (bool, error)
	DeletePlant(ctx context.Context, userID, id string) error
	AttachPhoto(ctx context.Context, userID, id, contentType string) (string, error)
	PhotoURL(ctx context.Context, userID, id string) (string, error)
}

type adminService interface {
	IsAdmin(ctx context.Context, caller *account.Identity) (bool, error)
	WatchIsAdmin(ctx context.Context, caller *account.Identity) <-chan adminoracle.State
	DeleteUserByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
	RevokeSessionsByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
	SendPasswordReset(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
}

type GRPCServer struct {
	rpc.UnimplementedPlantShelfServer
	address  string
	identity identityService
	plants   plantService
	admin    adminService
	metrics  *metrics.Metrics
	logger   logging.Logger
	now      func() time.Time
}

// NewGRPCServer builds the server. m may be nil to run without metrics.
func NewGRPCServer(a string, l logging.Logger, is identityService, ps plantService, as adminService, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: is,
		plants:   ps,
		admin:    as,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{}
	stream := []grpc.StreamServerInterceptor{}
	if s.metrics != nil {
		unary = append(unary, s.metrics.UnaryServerInterceptor())
		stream = append(stream, s.metrics.StreamServerInterceptor())
	}
	unary = append(unary, s.accessTokenInterceptor)
	stream = append(stream, s.streamAccessTokenInterceptor)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)
	rpc.RegisterPlantShelfServer(srv, s)
	return srv
}

// shutdownGrace bounds how long GracefulStop may wait for open watch
// streams before connections are closed.
const shutdownGrace = 5 * time.Second

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownGrace):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
