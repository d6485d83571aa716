package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/labscribe/internal/analytics"
	"github.com/dmitrijs2005/labscribe/internal/client/gate"
	"github.com/dmitrijs2005/labscribe/internal/client/templates"
)

const barWidth = 20

// Templates lists the built-in templates. The list is static and available
// without a session.
func (a *App) Templates(context.Context) error {
	for i, t := range templates.All() {
		a.printf("%d. %s (%s)\n   %s\n", i+1, t.Title, t.ID, t.Description)
	}
	if a.isSignedIn() {
		a.println("Type 'new <id>' or 'new <#>' to start a record from a template.")
	} else {
		a.println("Sign in, then type 'new <id>' to start a record from a template.")
	}
	return nil
}

func (a *App) Analytics(ctx context.Context) error {
	return a.open(ctx, func(m *gate.Mount) error {
		recs, err := a.records.ListRecords(m.Context(), m.User.ID)
		if err != nil {
			m.Commit(func() { a.reportStoreError(ctx, err, "Failed to load records") })
			return err
		}

		entries := make([]analytics.Entry, len(recs))
		for i, r := range recs {
			entries[i] = analytics.Entry{Subject: r.Fields.Subject, CreatedAt: r.CreatedAt}
		}
		snap := analytics.Compute(entries, a.now())

		m.Commit(func() { a.renderAnalytics(snap) })
		return nil
	})
}

func (a *App) renderAnalytics(s analytics.Snapshot) {
	a.printf("Total Records:   %d\n", s.Total)
	a.printf("This Month:      %d\n", s.ThisMonth)
	a.printf("This Week:       %d\n", s.ThisWeek)
	a.printf("Unique Subjects: %d\n", s.UniqueSubjects)

	if s.Total == 0 {
		a.println("No records yet. Create your first lab record to see analytics.")
		return
	}

	a.println("\nRecords by Subject")
	for _, sc := range s.Breakdown() {
		bar := strings.Repeat("#", max(1, sc.Count*barWidth/s.Total))
		a.printf("  %-28s %4d  %s\n", sc.Subject, sc.Count, bar)
	}
}

// Profile shows the profile and optionally edits it.
func (a *App) Profile(ctx context.Context) error {
	return a.open(ctx, func(m *gate.Mount) error {
		p, err := a.records.GetProfile(m.Context(), m.User.ID)
		if err != nil {
			m.Commit(func() { a.reportStoreError(ctx, err, "Failed to load profile") })
			return err
		}

		m.Commit(func() {
			a.printf("Email:      %s\n", m.User.Email)
			a.printf("Full name:  %s\n", p.FullName)
			a.printf("Student ID: %s\n", p.StudentID)
			a.printf("Department: %s\n", p.Department)
		})

		edit, err := Confirm(a.reader, "Edit profile?", a.out)
		if err != nil || !edit {
			return err
		}

		f := p.ProfileFields
		for _, q := range []struct {
			label string
			ptr   *string
		}{
			{"Full name", &f.FullName},
			{"Student ID", &f.StudentID},
			{"Department", &f.Department},
		} {
			v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", q.label, *q.ptr), a.out)
			if err != nil {
				return err
			}
			if v != "" {
				*q.ptr = v
			}
		}

		if !m.Mounted() {
			return nil
		}
		err = a.records.UpsertProfile(m.Context(), m.User.ID, f)
		m.Commit(func() {
			if err != nil {
				a.reportStoreError(ctx, err, "Failed to update profile")
				return
			}
			a.notifier.Success("Profile updated successfully!")
		})
		return err
	})
}

// Reset wipes the local database and signs out.
func (a *App) Reset(ctx context.Context) error {
	return a.open(ctx, func(m *gate.Mount) error {
		yes, err := Confirm(a.reader, "This will delete all local data and sign you out. Continue?", a.out)
		if err != nil || !yes {
			return err
		}
		if err := a.local.ClearLocalData(ctx); err != nil {
			a.log.Error(ctx, "reset failed", "error", err)
			a.notifier.Error("Failed to reset app data")
			return err
		}
		a.session.Invalidate()
		a.notifier.Success("App data reset successfully")
		return nil
	})
}

