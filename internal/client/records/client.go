// Package records is the client-side facade over the labscribe record and
// profile store. Every call is scoped to the signed-in user: without a
// matching session it fails with ErrNotAuthenticated before any I/O.
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/client/client"
	"github.com/dmitrijs2005/labscribe/internal/client/notify"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/logging"
)

const msgNotAuthenticated = "You must be signed in to do that"

// Store is the remote side, implemented by client.GRPCClient. The server
// derives the owner from the access token.
type Store interface {
	ListRecords(ctx context.Context) ([]api.Record, error)
	CreateRecord(ctx context.Context, fields api.RecordFields) (string, error)
	DeleteRecord(ctx context.Context, id string) error
	GetProfile(ctx context.Context) (*api.Profile, error)
	UpsertProfile(ctx context.Context, p api.UpsertProfileRequest) error
}

type Client struct {
	store    Store
	session  session.Handle
	notifier notify.Notifier
	log      logging.Logger
}

func New(store Store, h session.Handle, n notify.Notifier, log logging.Logger) *Client {
	return &Client{store: store, session: h, notifier: n, log: log.With("module", "records")}
}

// authorize returns the signed-in user id. A non-empty ownerID must match
// it.
func (c *Client) authorize(ownerID string) (string, error) {
	u, ok := c.session.State().User()
	if !ok || (ownerID != "" && u.ID != ownerID) {
		c.notifier.Error(msgNotAuthenticated)
		return "", ErrNotAuthenticated
	}
	return u.ID, nil
}

func (c *Client) mapError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		c.notifier.Error(msgNotAuthenticated)
		return ErrNotAuthenticated
	case errors.Is(err, client.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, client.ErrInvalidInput):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		c.log.Warn(ctx, "store call failed", "op", op, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrNetwork, op, err)
	}
}

func fromAPI(r api.Record) Record {
	f := r.Fields
	return Record{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Fields: Fields{
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
		},
		CreatedAt: r.CreatedAt,
	}
}

func (f Fields) toAPI() api.RecordFields {
	return api.RecordFields{
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
	}
}

func (f Fields) trimmed() Fields {
	return Fields{
		StudentName:     strings.TrimSpace(f.StudentName),
		RollNumber:      strings.TrimSpace(f.RollNumber),
		Subject:         strings.TrimSpace(f.Subject),
		ExperimentTitle: strings.TrimSpace(f.ExperimentTitle),
		ExperimentAim:   strings.TrimSpace(f.ExperimentAim),
		Theory:          strings.TrimSpace(f.Theory),
		Tools:           strings.TrimSpace(f.Tools),
		Code:            strings.TrimRight(f.Code, " \t\r\n"),
		Output:          strings.TrimRight(f.Output, " \t\r\n"),
		Conclusion:      strings.TrimSpace(f.Conclusion),
	}
}

// ListRecords returns ownerID's records, newest first. No records is an
// empty slice.
func (c *Client) ListRecords(ctx context.Context, ownerID string) ([]Record, error) {
	uid, err := c.authorize(ownerID)
	if err != nil {
		return nil, err
	}

	items, err := c.store.ListRecords(ctx)
	if err != nil {
		return nil, c.mapError(ctx, "list", err)
	}

	out := make([]Record, 0, len(items))
	for _, it := range items {
		if it.OwnerID != "" && it.OwnerID != uid {
			c.log.Error(ctx, "store returned a foreign record, dropping it", "record_id", it.ID)
			continue
		}
		out = append(out, fromAPI(it))
	}
	slices.SortStableFunc(out, func(a, b Record) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// CreateRecord stores a completed record for ownerID and returns its id.
func (c *Client) CreateRecord(ctx context.Context, ownerID string, fields Fields) (string, error) {
	if _, err := c.authorize(ownerID); err != nil {
		return "", err
	}

	fields = fields.trimmed()
	if err := fields.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	id, err := c.store.CreateRecord(ctx, fields.toAPI())
	if err != nil {
		return "", c.mapError(ctx, "create", err)
	}
	c.log.Info(ctx, "record created", "record_id", id)
	return id, nil
}

// DeleteRecord removes one of the caller's records. Ids that do not exist
// and ids owned by someone else both yield ErrNotFound.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	if _, err := c.authorize(""); err != nil {
		return err
	}
	if id == "" {
		return ErrNotFound
	}
	if err := c.store.DeleteRecord(ctx, id); err != nil {
		return c.mapError(ctx, "delete", err)
	}
	return nil
}

// SearchRecords filters ListRecords by query. See Filter.
func (c *Client) SearchRecords(ctx context.Context, ownerID, query string) ([]Record, error) {
	all, err := c.ListRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

// Filter keeps the records whose title, subject or student name contains
// query, ignoring case. An empty query keeps everything. Order is preserved.
func Filter(recs []Record, query string) []Record {
	q := strings.ToLower(query)
	if q == "" {
		return slices.Clone(recs)
	}
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, lowerQuery string) bool {
	for _, s := range []string{r.Fields.ExperimentTitle, r.Fields.Subject, r.Fields.StudentName} {
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	return false
}

// GetProfile returns userID's profile; a user who never saved one gets an
// empty profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	uid, err := c.authorize(userID)
	if err != nil {
		return Profile{}, err
	}

	p, err := c.store.GetProfile(ctx)
	if errors.Is(err, client.ErrNotFound) {
		return Profile{ID: uid}, nil
	}
	if err != nil {
		return Profile{}, c.mapError(ctx, "get profile", err)
	}
	return Profile{
		ID: uid,
		ProfileFields: ProfileFields{
			FullName:   p.FullName,
			StudentID:  p.StudentID,
			Department: p.Department,
		},
	}, nil
}

// UpsertProfile inserts or overwrites userID's profile.
func (c *Client) UpsertProfile(ctx context.Context, userID string, f ProfileFields) error {
	if _, err := c.authorize(userID); err != nil {
		return err
	}
	err := c.store.UpsertProfile(ctx, api.UpsertProfileRequest{
		FullName:   strings.TrimSpace(f.FullName),
		StudentID:  strings.TrimSpace(f.StudentID),
		Department: strings.TrimSpace(f.Department),
	})
	if err != nil {
		return c.mapError(ctx, "upsert profile", err)
	}
	return nil
}
