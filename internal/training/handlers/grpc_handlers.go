package handlers

import (
	"context"

	"github.com/gartstein/ehs/internal/training/controller"
	"github.com/gartstein/ehs/internal/training/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "training.v1.LifecycleService"

// LifecycleServer is the server API of training.v1.LifecycleService.
type LifecycleServer interface {
	SubmitProposal(context.Context, *SubmitProposalRequest) (*ProposalResponse, error)
	DecideProposal(context.Context, *DecideProposalRequest) (*controller.Decision, error)
	ScheduleSession(context.Context, *ScheduleSessionRequest) (*SessionResponse, error)
	AdvanceSession(context.Context, *AdvanceSessionRequest) (*SessionResponse, error)
	ApproveVendor(context.Context, *VendorReviewRequest) (*VendorResponse, error)
	RejectVendor(context.Context, *VendorReviewRequest) (*VendorResponse, error)
}

// LifecycleHandler provides gRPC methods for the lifecycle transitions,
// mapping requests to a LifecycleController.
type LifecycleHandler struct {
	service LifecycleController
	logger  *zap.Logger
}

// NewLifecycleHandler constructs a new LifecycleHandler with the given service and logger.
func NewLifecycleHandler(service LifecycleController, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// SubmitProposal records a vendor bid.
func (h *LifecycleHandler) SubmitProposal(ctx context.Context, req *SubmitProposalRequest) (*ProposalResponse, error) {
	oppID, err := parseID("opportunity ID", req.OpportunityID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	vendorID, err := optionalID("vendor ID", req.VendorID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	p, err := h.service.SubmitProposal(ctx, oppID, vendorID, req.Fees, req.Trainers, req.Notes)
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return &ProposalResponse{Proposal: p}, nil
}

// DecideProposal accepts or rejects a pending proposal.
func (h *LifecycleHandler) DecideProposal(ctx context.Context, req *DecideProposalRequest) (*controller.Decision, error) {
	id, err := parseID("proposal ID", req.ProposalID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	decision, ok := models.ParseProposalStatus(req.Decision)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown decision %q", req.Decision)
	}
	d, err := h.service.DecideProposal(ctx, id, decision)
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return d, nil
}

// ScheduleSession schedules an awarded opportunity.
func (h *LifecycleHandler) ScheduleSession(ctx context.Context, req *ScheduleSessionRequest) (*SessionResponse, error) {
	id, err := parseID("opportunity ID", req.OpportunityID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s, err := h.service.ScheduleSession(ctx, id, req.toModel())
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return &SessionResponse{Session: s}, nil
}

// AdvanceSession moves a session to its next status.
func (h *LifecycleHandler) AdvanceSession(ctx context.Context, req *AdvanceSessionRequest) (*SessionResponse, error) {
	id, err := parseID("session ID", req.SessionID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s, err := h.service.AdvanceSession(ctx, id, models.SessionStatus(req.Status), req.Rating)
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return &SessionResponse{Session: s}, nil
}

// ApproveVendor approves a pending vendor.
func (h *LifecycleHandler) ApproveVendor(ctx context.Context, req *VendorReviewRequest) (*VendorResponse, error) {
	id, err := parseID("vendor ID", req.VendorID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	v, err := h.service.ApproveVendor(ctx, id)
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return &VendorResponse{Vendor: v}, nil
}

// RejectVendor rejects a pending vendor.
func (h *LifecycleHandler) RejectVendor(ctx context.Context, req *VendorReviewRequest) (*VendorResponse, error) {
	id, err := parseID("vendor ID", req.VendorID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	v, err := h.service.RejectVendor(ctx, id)
	if err != nil {
		return nil, mapServiceError(h.logger, err)
	}
	return &VendorResponse{Vendor: v}, nil
}

// unaryMethod adapts a typed handler method to a grpc.MethodDesc.
func unaryMethod[Req, Resp any](name string, call func(LifecycleServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := srv.(LifecycleServer)
			if interceptor == nil {
				return call(h, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(h, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var lifecycleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LifecycleServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("SubmitProposal", LifecycleServer.SubmitProposal),
		unaryMethod("DecideProposal", LifecycleServer.DecideProposal),
		unaryMethod("ScheduleSession", LifecycleServer.ScheduleSession),
		unaryMethod("AdvanceSession", LifecycleServer.AdvanceSession),
		unaryMethod("ApproveVendor", LifecycleServer.ApproveVendor),
		unaryMethod("RejectVendor", LifecycleServer.RejectVendor),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "training/v1/lifecycle",
}
