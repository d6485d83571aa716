package cli

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/dmitrijs2005/labscribe/internal/client/gate"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
)

const dateLayout = "2006-01-02 15:04"

// Dashboard lists the user's records, newest first, narrowed by query.
func (a *App) Dashboard(ctx context.Context, query string) error {
	return a.open(ctx, func(m *gate.Mount) error {
		board := records.NewBoard(a.records, m.User.ID)
		if err := board.Load(m.Context()); err != nil {
			m.Commit(func() { a.reportStoreError(ctx, err, "Failed to load records") })
			return err
		}
		m.Commit(func() { a.renderRecords(board.Visible(query), query) })
		return nil
	})
}

func (a *App) renderRecords(recs []records.Record, query string) {
	if len(recs) == 0 {
		if query != "" {
			a.printf("No records match %q\n", query)
		} else {
			a.println("No lab records yet. Type 'new' to create one.")
		}
		return
	}

	a.printf("%d record(s)\n", len(recs))
	for i, r := range recs {
		a.printf("%2d. %s\n", i+1, r.Fields.ExperimentTitle)
		a.printf("    %s | %s | %s\n", r.Fields.Subject, r.Fields.StudentName, r.CreatedAt.Local().Format(dateLayout))
		a.printf("    id: %s\n", r.ID)
	}
}

// resolve finds ref among recs, either as a record id or as the 1-based
// position shown by an unfiltered list.
func resolve(recs []records.Record, ref string) (records.Record, bool) {
	if i := slices.IndexFunc(recs, func(r records.Record) bool { return r.ID == ref }); i >= 0 {
		return recs[i], true
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(recs) {
		return recs[n-1], true
	}
	return records.Record{}, false
}

// Delete asks for confirmation and removes one record.
func (a *App) Delete(ctx context.Context, ref string) error {
	return a.open(ctx, func(m *gate.Mount) error {
		board := records.NewBoard(a.records, m.User.ID)
		if err := board.Load(m.Context()); err != nil {
			m.Commit(func() { a.reportStoreError(ctx, err, "Failed to load records") })
			return err
		}

		rec, ok := resolve(board.Records(), ref)
		if !ok {
			a.notifier.Error("Record not found")
			return records.ErrNotFound
		}

		yes, err := Confirm(a.reader, "Delete \""+rec.Fields.ExperimentTitle+"\"? This cannot be undone.", a.out)
		if err != nil {
			return err
		}
		if !yes {
			a.println("Cancelled")
			return nil
		}

		err = board.Delete(m.Context(), rec.ID)
		m.Commit(func() {
			switch {
			case err == nil:
				a.notifier.Success("Record deleted successfully")
			case errors.Is(err, records.ErrNotFound):
				a.notifier.Error("Record not found")
			default:
				a.reportStoreError(ctx, err, "Failed to delete record")
			}
		})
		return err
	})
}
