package keep

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

type fakeClient struct {
	loginErr error
	listErr  error
	notes    []core.KeepAPINote
	user     string
}

func (c *fakeClient) Login(_ context.Context, username, _ string) error {
	c.user = username
	return c.loginErr
}

func (c *fakeClient) Notes(context.Context) ([]core.KeepAPINote, error) {
	return c.notes, c.listErr
}

func TestAPIReader_Authenticate(t *testing.T) {
	c := &fakeClient{}
	r := NewAPIReader(c, "me@example.com", "secret")
	require.NoError(t, r.Authenticate(context.Background()))
	assert.Equal(t, "me@example.com", c.user)

	c.loginErr = errors.New("bad password")
	assert.Error(t, r.Authenticate(context.Background()))

	empty := NewAPIReader(c, "", "")
	assert.ErrorIs(t, empty.Authenticate(context.Background()), ErrMissingCredentials)
}

func TestAPIReader_SkipsTrashed(t *testing.T) {
	c := &fakeClient{notes: []core.KeepAPINote{
		{ID: "1", Title: "a"},
		{ID: "2", Title: "b", Trashed: true},
		{ID: "3", Title: "c", Archived: true},
	}}
	r := NewAPIReader(c, "u", "p")

	recs, errs := collect(t, r)
	require.Empty(t, errs)
	require.Len(t, recs, 2)
	assert.Equal(t, "keep:1", recs[0].Origin())
	assert.Equal(t, "keep:3", recs[1].Origin())
}

func TestAPIReader_ListFailure(t *testing.T) {
	c := &fakeClient{listErr: errors.New("boom")}
	r := NewAPIReader(c, "u", "p")

	recs, errs := collect(t, r)
	assert.Empty(t, recs)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], core.ErrSourceRead)
}
