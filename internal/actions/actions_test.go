package actions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console-sync/internal/notify"
)

type fakeAPI struct {
	calls int
	err   error
}

func (f *fakeAPI) ClearAll(context.Context) error {
	f.calls++
	return f.err
}

type denyConfirm struct{}

func (denyConfirm) Confirm(context.Context, string) (bool, error) { return false, nil }

func seededStore() *notify.Store {
	s := notify.NewStore(10)
	s.Add(notify.SeverityInfo, "t1", "m1", "", "1")
	s.Add(notify.SeverityInfo, "t2", "m2", "", "2")
	return s
}

func TestClearAllOptimistic(t *testing.T) {
	store := seededStore()
	api := &fakeAPI{}
	var clearedBeforeServer bool
	apiCheck := clearCheck{api: api, store: store, sawEmpty: &clearedBeforeServer}

	h := NewHandler(store, apiCheck, AutoConfirm{})
	require.NoError(t, h.ClearAll(context.Background()))

	assert.True(t, clearedBeforeServer, "store emptied before the server call")
	assert.Equal(t, 1, api.calls)
	assert.Zero(t, store.Len())
}

// clearCheck records whether the store was already empty when the server
// request went out.
type clearCheck struct {
	api      *fakeAPI
	store    *notify.Store
	sawEmpty *bool
}

func (c clearCheck) ClearAll(ctx context.Context) error {
	*c.sawEmpty = c.store.Len() == 0
	return c.api.ClearAll(ctx)
}

func TestClearAllDismissed(t *testing.T) {
	store := seededStore()
	api := &fakeAPI{}

	h := NewHandler(store, api, denyConfirm{})
	require.NoError(t, h.ClearAll(context.Background()))

	assert.Equal(t, 2, store.Len(), "dismissal leaves the store untouched")
	assert.Zero(t, api.calls)
}

func TestClearAllServerFailureAddsOneErrorRecord(t *testing.T) {
	store := seededStore()
	api := &fakeAPI{err: errors.New("boom")}

	h := NewHandler(store, api, nil)
	require.Error(t, h.ClearAll(context.Background()))

	recs := store.List()
	require.Len(t, recs, 1, "exactly one compensating record after the optimistic clear")
	assert.Equal(t, notify.SeverityError, recs[0].Severity)
	assert.Equal(t, "Failed to clear notifications", recs[0].Title)
	assert.Contains(t, recs[0].Message, "boom")
}

func TestTermConfirm(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out strings.Builder
		c := TermConfirm{In: strings.NewReader(tc.in), Out: &out}
		got, err := c.Confirm(context.Background(), "Sure?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		assert.Contains(t, out.String(), "Sure?")
	}
}
