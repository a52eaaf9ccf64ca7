package handlers

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gartstein/ehs/internal/training/auth"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestServer_RegisterHTTPGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50161, 18161, logger)
	h := NewRESTHandler(&mockController{}, logger, nil, nil)
	if err := s.RegisterHTTPGateway(h, "secret", NewRateLimiter(10, 20)); err != nil {
		t.Fatalf("RegisterHTTPGateway failed: %v", err)
	}
	if s.httpServer.Handler == nil {
		t.Error("expected httpServer.Handler to be set")
	}
	if s.httpServer.Addr != s.httpEndpoint {
		t.Errorf("expected httpServer.Addr %q, got %q", s.httpEndpoint, s.httpServer.Addr)
	}
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	interceptor := auth.NewAuthInterceptor(testSecret)
	s := NewServer(50162, 18162, logger, grpc.UnaryInterceptor(interceptor.Unary()))

	vendorID := uuid.New()
	mock := &mockController{
		approveVendorFunc: func(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
			actor, ok := models.ActorFromContext(ctx)
			if !ok || actor.Role != models.RoleAdmin {
				t.Errorf("expected admin actor in context, got %+v", actor)
			}
			return &models.Vendor{ID: id, Status: models.VendorApproved}, nil
		},
	}
	s.RegisterGRPCHandler(NewLifecycleHandler(mock, logger))
	if err := s.RegisterHTTPGateway(NewRESTHandler(mock, logger, nil, nil), testSecret, nil); err != nil {
		t.Fatalf("RegisterHTTPGateway failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	// Give the server a moment to start.
	time.Sleep(200 * time.Millisecond)

	conn, err := grpc.NewClient("localhost:50162", grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to connect to gRPC server: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", health.GetStatus())
	}

	method := "/" + ServiceName + "/ApproveVendor"
	req := &VendorReviewRequest{VendorID: vendorID.String()}
	var resp VendorResponse
	err = conn.Invoke(ctx, method, req, &resp, grpc.CallContentSubtype(CodecName))
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated without a token, got %v", err)
	}

	tok, err := auth.GenerateToken(uuid.New(), models.RoleAdmin, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
	if err := conn.Invoke(authed, method, req, &resp, grpc.CallContentSubtype(CodecName)); err != nil {
		t.Fatalf("ApproveVendor over gRPC failed: %v", err)
	}
	if resp.Vendor == nil || resp.Vendor.ID != vendorID || resp.Vendor.Status != models.VendorApproved {
		t.Errorf("unexpected response: %+v", resp.Vendor)
	}
	if err := conn.Invoke(authed, method, req, &resp); err == nil {
		t.Error("expected the default proto codec to refuse lifecycle messages")
	}

	httpResp, err := http.Get("http://localhost:18162/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /healthz, got %d", httpResp.StatusCode)
	}

	s.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Server Start returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}

	lis, err := net.Listen("tcp", s.grpcEndpoint)
	if err != nil {
		t.Errorf("expected to be able to listen on %q after shutdown, but got error: %v", s.grpcEndpoint, err)
	} else {
		lis.Close()
	}
}
