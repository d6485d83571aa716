package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/labscribe/internal/client/gate"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
	"github.com/dmitrijs2005/labscribe/internal/client/templates"
)

var (
	getMultiline = GetMultiline

	errCancelled       = errors.New("cancelled")
	errUnknownTemplate = errors.New("unknown template")
)

type formField struct {
	key       string
	label     string
	multiline bool
	ptr       func(*records.Fields) *string
}

type formStep struct {
	title  string
	fields []formField
}

var createSteps = []formStep{
	{"Student Info", []formField{
		{"student_name", "Student name", false, func(f *records.Fields) *string { return &f.StudentName }},
		{"roll_number", "Roll number", false, func(f *records.Fields) *string { return &f.RollNumber }},
		{"subject", "Subject", false, func(f *records.Fields) *string { return &f.Subject }},
	}},
	{"Experiment", []formField{
		{"experiment_title", "Experiment title", false, func(f *records.Fields) *string { return &f.ExperimentTitle }},
		{"experiment_aim", "Aim", true, func(f *records.Fields) *string { return &f.ExperimentAim }},
	}},
	{"Theory", []formField{
		{"theory", "Theory", true, func(f *records.Fields) *string { return &f.Theory }},
		{"tools", "Tools and apparatus", false, func(f *records.Fields) *string { return &f.Tools }},
	}},
	{"Code", []formField{
		{"code", "Code / procedure", true, func(f *records.Fields) *string { return &f.Code }},
	}},
	{"Output", []formField{
		{"output", "Output / observations", true, func(f *records.Fields) *string { return &f.Output }},
	}},
	{"Conclusion", []formField{
		{"conclusion", "Conclusion", true, func(f *records.Fields) *string { return &f.Conclusion }},
	}},
}

// Create runs the create wizard, prefilled from templateKey when given, and
// stores the result.
func (a *App) Create(ctx context.Context, templateKey string) error {
	return a.open(ctx, func(m *gate.Mount) error {
		var f records.Fields
		if templateKey != "" {
			tpl, ok := templates.Lookup(templateKey)
			if !ok {
				a.notifier.Error(fmt.Sprintf("Unknown template %q, type 'templates' to see the list", templateKey))
				return errUnknownTemplate
			}
			f = tpl.Apply(f)
			a.notifier.Success(tpl.Title + " template loaded!")
		}

		f, err := a.runWizard(f)
		if errors.Is(err, errCancelled) {
			a.println("Cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		if !m.Mounted() {
			return nil
		}
		id, err := a.records.CreateRecord(m.Context(), m.User.ID, f)
		m.Commit(func() {
			if err != nil {
				a.reportStoreError(ctx, err, "Failed to create lab record")
				return
			}
			a.notifier.Success("Lab record created successfully!")
			a.printf("Record id: %s\n", id)
		})
		return err
	})
}

// runWizard walks the steps with back and next navigation. Submitting with
// empty fields reports them and returns to the first step that has one.
func (a *App) runWizard(f records.Fields) (records.Fields, error) {
	i := 0
	for {
		st := createSteps[i]
		a.printf("\nStep %d of %d: %s\n", i+1, len(createSteps), st.title)
		for _, fld := range st.fields {
			if err := a.askField(&f, fld); err != nil {
				return f, err
			}
		}

		last := i == len(createSteps)-1
		prompt := "(n)ext, (b)ack, (c)ancel"
		if last {
			prompt = "(s)ubmit, (b)ack, (c)ancel"
		}

		choice, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return f, err
		}
		switch strings.ToLower(choice) {
		case "b", "back":
			if i > 0 {
				i--
			}
		case "c", "cancel":
			return f, errCancelled
		case "", "n", "next", "s", "submit":
			if !last {
				i++
				continue
			}
			verr := f.Validate()
			if verr == nil {
				return f, nil
			}
			missing, first := missingFields(verr)
			a.notifier.Error("Please fill in: " + strings.Join(missing, ", "))
			i = first
		default:
			a.println("Unknown choice:", choice)
		}
	}
}

func (a *App) askField(f *records.Fields, fld formField) error {
	cur := fld.ptr(f)
	var (
		v   string
		err error
	)
	if fld.multiline {
		prompt := fld.label
		if *cur != "" {
			prompt = fmt.Sprintf("%s (current below, empty line keeps it)\n%s", fld.label, *cur)
		}
		v, err = getMultiline(a.reader, prompt, a.out)
	} else {
		prompt := fld.label
		if *cur != "" {
			prompt = fmt.Sprintf("%s [%s]", fld.label, *cur)
		}
		v, err = getSimpleText(a.reader, prompt, a.out)
	}
	if err != nil {
		return err
	}
	if v != "" {
		*cur = v
	}
	return nil
}

// missingFields lists the labels of the fields verr names, in form order,
// along with the index of the first step holding one.
func missingFields(verr error) ([]string, int) {
	var errs validation.Errors
	if !errors.As(verr, &errs) {
		return []string{verr.Error()}, 0
	}
	var labels []string
	first := -1
	for i, st := range createSteps {
		for _, fld := range st.fields {
			if errs[fld.key] == nil {
				continue
			}
			labels = append(labels, fld.label)
			if first < 0 {
				first = i
			}
		}
	}
	return labels, max(first, 0)
}
