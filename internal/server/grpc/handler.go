package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/services"
)

func tokenResponse(s *services.Session) *api.TokenResponse {
	return &api.TokenResponse{
		UserID:          s.UserID,
		Email:           s.Email,
		AccessToken:     s.AccessToken,
		RefreshToken:    s.RefreshToken,
		AccessExpiresAt: s.AccessExpiresAt,
	}
}

// toStatus maps service errors to gRPC codes. Anything unrecognized is
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrWeakPassword):
		return status.Error(codes.InvalidArgument, common.ErrWeakPassword.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) callerID(ctx context.Context) (string, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.TokenResponse, error) {
	sess, err := s.users.SignUp(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, s.toStatus(ctx, "sign up", err)
	}
	s.logger.Info(ctx, "Registered", "user_id", sess.UserID)
	return tokenResponse(sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.TokenResponse, error) {
	sess, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign in", err)
	}
	return tokenResponse(sess), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.TokenResponse, error) {
	sess, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh", err)
	}
	return tokenResponse(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListRecords(ctx context.Context, _ *api.ListRecordsRequest) (*api.ListRecordsResponse, error) {
	uid, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.List(ctx, uid)
	if err != nil {
		return nil, s.toStatus(ctx, "list records", err)
	}

	out := make([]api.Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, api.Record{
			ID:      r.ID,
			OwnerID: r.UserID,
			Fields: api.RecordFields{
				StudentName:     r.StudentName,
				RollNumber:      r.RollNumber,
				Subject:         r.Subject,
				ExperimentTitle: r.ExperimentTitle,
				ExperimentAim:   r.ExperimentAim,
				Theory:          r.Theory,
				Tools:           r.Tools,
				Code:            r.Code,
				Output:          r.Output,
				Conclusion:      r.Conclusion,
			},
			CreatedAt: r.CreatedAt,
		})
	}
	return &api.ListRecordsResponse{Records: out}, nil
}

func (s *GRPCServer) CreateRecord(ctx context.Context, req *api.CreateRecordRequest) (*api.CreateRecordResponse, error) {
	uid, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	f := req.Fields
	rec, err := s.records.Create(ctx, uid, models.LabRecord{
		StudentName:     f.StudentName,
		RollNumber:      f.RollNumber,
		Subject:         f.Subject,
		ExperimentTitle: f.ExperimentTitle,
		ExperimentAim:   f.ExperimentAim,
		Theory:          f.Theory,
		Tools:           f.Tools,
		Code:            f.Code,
		Output:          f.Output,
		Conclusion:      f.Conclusion,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "create record", err)
	}
	return &api.CreateRecordResponse{ID: rec.ID}, nil
}

func (s *GRPCServer) DeleteRecord(ctx context.Context, req *api.DeleteRecordRequest) (*api.Empty, error) {
	uid, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.records.Delete(ctx, uid, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete record", err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *api.GetProfileRequest) (*api.Profile, error) {
	uid, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, s.toStatus(ctx, "get profile", err)
	}
	return &api.Profile{UserID: p.UserID, FullName: p.FullName, StudentID: p.StudentID, Department: p.Department}, nil
}

func (s *GRPCServer) UpsertProfile(ctx context.Context, req *api.UpsertProfileRequest) (*api.Empty, error) {
	uid, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	err = s.profiles.Upsert(ctx, models.Profile{
		UserID:     uid,
		FullName:   req.FullName,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "upsert profile", err)
	}
	return &api.Empty{}, nil
}
