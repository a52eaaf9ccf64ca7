// Package handlers serves the training lifecycle over gRPC and a JSON REST
// API, translating between transport messages and domain models.
//
// The gRPC service exchanges the request and response structs of this package
// as JSON under the "json" content subtype (application/grpc+json) instead of
// protobuf. Go clients call it with
//
//	conn.Invoke(ctx, "/"+handlers.ServiceName+"/SubmitProposal", req, &resp,
//		grpc.CallContentSubtype(handlers.CodecName))
//
// Tooling that only speaks protobuf, such as grpcurl or protoc-generated
// clients, cannot call it; those callers use the REST API, which exposes every
// operation of the gRPC service.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/ehs/internal/training/controller"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// LifecycleController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type LifecycleController interface {
	CreateTraining(ctx context.Context, t *models.Training) (*models.Training, error)
	GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error)
	ListTrainings(ctx context.Context, f query.TrainingFilter) ([]models.Training, error)
	UpdateTraining(ctx context.Context, update *models.TrainingUpdate) (*models.Training, error)
	DeleteTraining(ctx context.Context, id uuid.UUID) error

	CreateOpportunity(ctx context.Context, o *models.Opportunity) (*models.Opportunity, error)
	GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListOpportunities(ctx context.Context, f query.OpportunityFilter) ([]models.Opportunity, error)
	CloseOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)

	SubmitProposal(ctx context.Context, opportunityID, vendorID uuid.UUID, fees models.Fees, trainers []models.Trainer, notes string) (*models.Proposal, error)
	DecideProposal(ctx context.Context, proposalID uuid.UUID, decision models.ProposalStatus) (*controller.Decision, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListProposals(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error)

	ScheduleSession(ctx context.Context, opportunityID uuid.UUID, schedule models.SessionSchedule) (*models.Session, error)
	AdvanceSession(ctx context.Context, sessionID uuid.UUID, next models.SessionStatus, rating *float64) (*models.Session, error)
	AddSessionMaterial(ctx context.Context, sessionID uuid.UUID, name, ref string) (*models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, f query.SessionFilter) ([]models.Session, error)

	RegisterVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error)
	ApproveVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	RejectVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context, f query.VendorFilter) ([]models.Vendor, error)
	VendorSummary(ctx context.Context) (*query.VendorSummary, error)

	Calendar(ctx context.Context, month time.Time, filter string) (*controller.Calendar, error)
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
// The standard gRPC health service is registered on the gRPC server.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	s := &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		health:       health.NewServer(),
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// RegisterGRPCHandler registers the lifecycle service and marks it serving.
func (s *Server) RegisterGRPCHandler(h LifecycleServer) {
	s.grpcServer.RegisterService(&lifecycleServiceDesc, h)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// RegisterHTTPGateway installs the REST handler with authentication and rate
// limiting in front of it.
func (s *Server) RegisterHTTPGateway(h *RESTHandler, jwtSecret string, limiter *RateLimiter) error {
	handler, err := h.Handler(jwtSecret, limiter)
	if err != nil {
		return err
	}
	s.httpServer.Handler = handler
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
