package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestCreate_FromTemplate(t *testing.T) {
	input := lines(
		// Student Info
		"Ann", "R-17", "", "n",
		// Experiment: title, keep the aim
		"Simple pendulum", "", "",
		// Theory: keep both
		"", "", "n",
		// Code
		"T = 2*pi*sqrt(l/g)", "", "n",
		// Output
		"T = 1.42s", "", "n",
		// Conclusion
		"g is about 9.8", "", "s",
	)
	e := newTestEnv(t, input, signedIn)

	require.NoError(t, e.app.Create(context.Background(), "physics"))

	require.Len(t, e.store.created, 1)
	assert.Equal(t, api.RecordFields{
		StudentName:     "Ann",
		RollNumber:      "R-17",
		Subject:         "Physics",
		ExperimentTitle: "Simple pendulum",
		ExperimentAim:   "To verify [physics law/principle]",
		Theory:          "Explain the physical concepts, laws, formulas, and theoretical basis of the experiment.",
		Tools:           "Apparatus, Measuring Instruments, Weights, Scales",
		Code:            "T = 2*pi*sqrt(l/g)",
		Output:          "T = 1.42s",
		Conclusion:      "g is about 9.8",
	}, e.store.created[0])
	assert.Equal(t, []string{"Physics Lab template loaded!", "Lab record created successfully!"}, e.successes())
	assert.Contains(t, e.out.String(), "Step 6 of 6: Conclusion")
	assert.Contains(t, e.out.String(), "Record id: new-1")
}

func TestCreate_BackThenCancel(t *testing.T) {
	input := lines(
		"Ann", "R-17", "Chemistry", "n",
		"Titration", "find molarity", "", "b",
		"", "", "", "c",
	)
	e := newTestEnv(t, input, signedIn)

	require.NoError(t, e.app.Create(context.Background(), ""))

	assert.Empty(t, e.store.created)
	assert.Equal(t, 2, strings.Count(e.out.String(), "Step 1 of 6"))
	assert.Contains(t, e.out.String(), "Student name [Ann]")
	assert.Contains(t, e.out.String(), "Cancelled")
}

func TestCreate_SubmitWithMissingFieldReturnsToItsStep(t *testing.T) {
	input := lines(
		"Ann", "R-17", "Chemistry", "n",
		"Titration", "find molarity", "", "n",
		"acid base", "", "burette", "n",
		// Code left empty
		"", "n",
		"0.1M", "", "n",
		"done", "", "s",
		// back at Code
		"NaOH + HCl", "", "n",
		"", "n",
		"", "s",
	)
	e := newTestEnv(t, input, signedIn)

	require.NoError(t, e.app.Create(context.Background(), ""))

	assert.Equal(t, []string{"Please fill in: Code / procedure"}, e.notes.Errors())
	require.Len(t, e.store.created, 1)
	assert.Equal(t, "NaOH + HCl", e.store.created[0].Code)
	assert.Equal(t, "done", e.store.created[0].Conclusion)
	assert.Equal(t, 2, strings.Count(e.out.String(), "Step 4 of 6: Code"))
}

func TestCreate_UnknownTemplate(t *testing.T) {
	e := newTestEnv(t, "", signedIn)

	err := e.app.Create(context.Background(), "biology")

	require.ErrorIs(t, err, errUnknownTemplate)
	assert.Len(t, e.notes.Errors(), 1)
	assert.Empty(t, e.store.created)
}

func TestCreate_StoreFailure(t *testing.T) {
	input := lines(
		"Ann", "R-17", "", "n",
		"Pendulum", "", "",
		"", "", "n",
		"code", "", "n",
		"out", "", "n",
		"end", "", "s",
	)
	e := newTestEnv(t, input, signedIn)
	e.store.createErr = client.ErrUnavailable

	require.Error(t, e.app.Create(context.Background(), "6"))
	assert.Equal(t, []string{"Failed to create lab record"}, e.notes.Errors())
}

func TestCreate_InputEndsMidWizard(t *testing.T) {
	e := newTestEnv(t, "Ann\n", signedIn)

	require.Error(t, e.app.Create(context.Background(), ""))
	assert.Empty(t, e.store.created)
}

func TestMissingFields(t *testing.T) {
	labels, first := missingFields(assert.AnError)
	assert.Equal(t, []string{assert.AnError.Error()}, labels)
	assert.Zero(t, first)
}
