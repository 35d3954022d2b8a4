package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Setenv("AMQP_URL", "")
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "tracker.db")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append(args, "--backend=sqlite", "--sqlite-path="+h.dbPath, "--no-events"))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err)
	return out
}

func (h *harness) add(kind, title, amount, category, date string) string {
	h.t.Helper()
	out := h.mustRun("add", kind,
		"--title="+title,
		"--amount="+amount,
		"--category="+category,
		"--description="+title+" note",
		"--date="+date)
	_, id, ok := strings.Cut(strings.TrimSpace(out), ": ")
	require.True(h.t, ok, "unexpected output %q", out)
	return id
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "migrations applied (sqlite)\n", h.mustRun("migrate"))
	// Idempotent.
	assert.Equal(t, "migrations applied (sqlite)\n", h.mustRun("migrate"))
}

func TestAddListDelete(t *testing.T) {
	h := newHarness(t)

	salary := h.add("income", "Salary", "1500", "salary", "2024-03-01")
	groceries := h.add("expense", "Groceries", "49,90", "groceries", "2024-03-02")
	assert.NotEmpty(t, salary)

	out := h.mustRun("list", "income")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "1500.00")
	assert.NotContains(t, out, "Groceries")

	out = h.mustRun("list", "expense")
	assert.Contains(t, out, groceries)
	assert.Contains(t, out, "49.90")

	assert.Equal(t, "Expense deleted: "+groceries+"\n", h.mustRun("delete", "expense", groceries))
	assert.NotContains(t, h.mustRun("list", "expense"), groceries)

	_, err := h.run("delete", "expense", groceries)
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestAddNormalisesCategory(t *testing.T) {
	h := newHarness(t)
	h.add("income", "Salary", "1500", "Salary", "2024-03-01")

	out := h.mustRun("list", "income")
	assert.Contains(t, out, "salary")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "expense", "--title=x", "--amount=-1", "--category=health", "--description=d")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = h.run("add", "income", "--title=x", "--amount=1", "--category=groceries", "--description=d")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = h.run("add", "transfer", "--title=x", "--amount=1", "--category=other", "--description=d")
	assert.ErrorIs(t, err, core.ErrInvalidKind)

	_, err = h.run("add", "income", "--amount=1", "--category=bank", "--description=d")
	assert.Error(t, err, "title flag is required")
}

func TestTableAndSummary(t *testing.T) {
	h := newHarness(t)
	h.add("income", "Salary", "1500", "salary", "2024-03-01")
	h.add("expense", "Groceries", "50", "groceries", "2024-03-02")
	h.add("expense", "Laptop", "1200", "education", "2024-03-03")

	out := h.mustRun("table", "--type=expense", "--amount=>1000")
	assert.Contains(t, out, "Laptop")
	assert.NotContains(t, out, "Groceries")
	assert.Contains(t, out, "Balance:        250.00")

	out = h.mustRun("table", "--sort=amount")
	assert.Less(t, strings.Index(out, "Groceries"), strings.Index(out, "Laptop"))
	assert.Less(t, strings.Index(out, "Laptop"), strings.Index(out, "Salary"))

	out = h.mustRun("table", "--search=nothing")
	assert.Contains(t, out, "No transactions match.")

	_, err := h.run("table", "--sort=colour")
	assert.Error(t, err)

	out = h.mustRun("summary", "--recent=1")
	assert.Contains(t, out, "Total income:   1500.00")
	assert.Contains(t, out, "Total expenses: 1250.00")
	assert.Contains(t, out, "Expense range: 50.00 - 1200.00")
	assert.Contains(t, out, "Laptop")
	assert.NotContains(t, out, "Groceries")
}

func TestSummaryEmptyMemoryBackend(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	var out bytes.Buffer
	cmd := newRootCmd(&out, &bytes.Buffer{})
	cmd.SetArgs([]string{"summary", "--backend=memory"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Income range: none")
	assert.Contains(t, out.String(), "Balance:        0.00")
}
