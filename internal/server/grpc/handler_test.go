package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/common"
)

func fields(subject string) api.RecordFields {
	return api.RecordFields{
		StudentName: "Ann", RollNumber: "7", Subject: subject,
		ExperimentTitle: "Pendulum", ExperimentAim: "Measure g", Theory: "SHM",
		Tools: "String", Code: "n/a", Output: "9.8", Conclusion: "ok",
	}
}

func signUp(t *testing.T, h *harness, email string) *api.TokenResponse {
	t.Helper()
	resp, err := h.client.SignUp(context.Background(), &api.SignUpRequest{Email: email, Password: "secret1", FullName: "Ann"})
	require.NoError(t, err)
	return resp
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()
	h := startHarness(t)

	up := signUp(t, h, "ann@x.com")
	assert.Equal(t, "ann@x.com", up.Email)
	assert.False(t, up.AccessExpiresAt.IsZero())

	_, err := h.client.SignUp(ctx, &api.SignUpRequest{Email: "ann@x.com", Password: "secret1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = h.client.SignUp(ctx, &api.SignUpRequest{Email: "bob@x.com", Password: "123"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, common.ErrWeakPassword.Error(), status.Convert(err).Message())

	_, err = h.client.SignIn(ctx, &api.SignInRequest{Email: "ann@x.com", Password: "nope-nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	in, err := h.client.SignIn(ctx, &api.SignInRequest{Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, up.UserID, in.UserID)

	ref, err := h.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: in.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, in.RefreshToken, ref.RefreshToken)

	_, err = h.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: ref.RefreshToken})
	require.NoError(t, err)

	_, err = h.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: ref.RefreshToken})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRecordsFlow(t *testing.T) {
	ctx := context.Background()
	h := startHarness(t)

	ann := signUp(t, h, "ann@x.com")
	bob := signUp(t, h, "bob@x.com")
	annCtx := withToken(ctx, ann.AccessToken)
	bobCtx := withToken(ctx, bob.AccessToken)

	created, err := h.client.CreateRecord(annCtx, &api.CreateRecordRequest{Fields: fields("Physics")})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	incomplete := fields("Physics")
	incomplete.Theory = ""
	_, err = h.client.CreateRecord(annCtx, &api.CreateRecordRequest{Fields: incomplete})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	list, err := h.client.ListRecords(annCtx, &api.ListRecordsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Records, 1)
	assert.Equal(t, ann.UserID, list.Records[0].OwnerID)
	assert.Equal(t, fields("Physics"), list.Records[0].Fields)

	bobs, err := h.client.ListRecords(bobCtx, &api.ListRecordsRequest{})
	require.NoError(t, err)
	assert.Empty(t, bobs.Records)

	_, err = h.client.DeleteRecord(bobCtx, &api.DeleteRecordRequest{ID: created.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.DeleteRecord(annCtx, &api.DeleteRecordRequest{ID: created.ID})
	require.NoError(t, err)

	_, err = h.client.DeleteRecord(annCtx, &api.DeleteRecordRequest{ID: created.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestProfileFlow(t *testing.T) {
	ctx := context.Background()
	h := startHarness(t)

	ann := signUp(t, h, "ann@x.com")
	annCtx := withToken(ctx, ann.AccessToken)

	p, err := h.client.GetProfile(annCtx, &api.GetProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.FullName)

	_, err = h.client.UpsertProfile(annCtx, &api.UpsertProfileRequest{FullName: "Ann B", StudentID: "S-7", Department: "Physics"})
	require.NoError(t, err)

	p, err = h.client.GetProfile(annCtx, &api.GetProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, &api.Profile{UserID: ann.UserID, FullName: "Ann B", StudentID: "S-7", Department: "Physics"}, p)
}

func TestProtectedMethodsRequireToken(t *testing.T) {
	h := startHarness(t)

	_, err := h.client.ListRecords(context.Background(), &api.ListRecordsRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	_, err = h.client.GetProfile(withToken(context.Background(), "garbage"), &api.GetProfileRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrInvalidToken.Error(), status.Convert(err).Message())
}

func TestMetricsCountCalls(t *testing.T) {
	h := startHarness(t)

	_, _ = h.client.ListRecords(context.Background(), &api.ListRecordsRequest{})
	signUp(t, h, "ann@x.com")

	families, err := h.registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "labscribe_grpc_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var method, code string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "method":
					method = l.GetValue()
				case "code":
					code = l.GetValue()
				}
			}
			counts[method+" "+code] += m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 1.0, counts[api.ListRecordsMethod+" Unauthenticated"])
	assert.Equal(t, 1.0, counts[api.SignUpMethod+" OK"])
}
