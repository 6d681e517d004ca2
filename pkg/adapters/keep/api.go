package keep

import (
	"context"
	"errors"
	"iter"

	"github.com/aretw0/notesync/pkg/core"
)

// ErrMissingCredentials is returned by Authenticate without a username and password.
var ErrMissingCredentials = errors.New("google keep credentials not configured")

// Client is the part of a Google Keep account client the reader uses.
type Client interface {
	Login(ctx context.Context, username, password string) error
	Notes(ctx context.Context) ([]core.KeepAPINote, error)
}

// APIReader reads notes through a logged-in account client.
type APIReader struct {
	client   Client
	username string
	password string
}

// NewAPIReader creates a reader for the given account.
func NewAPIReader(client Client, username, password string) *APIReader {
	return &APIReader{client: client, username: username, password: password}
}

// Kind implements core.Reader.
func (r *APIReader) Kind() core.Source { return core.SourceGoogleKeep }

// Authenticate logs in. A failure makes the source contribute no notes.
func (r *APIReader) Authenticate(ctx context.Context) error {
	if r.username == "" || r.password == "" {
		return ErrMissingCredentials
	}
	if r.client == nil {
		return errors.New("google keep client not available")
	}
	return r.client.Login(ctx, r.username, r.password)
}

// Records yields every non-trashed note. A failed listing yields a single
// error and ends the sequence.
func (r *APIReader) Records(ctx context.Context) iter.Seq2[core.RawRecord, error] {
	return func(yield func(core.RawRecord, error) bool) {
		if r.client == nil {
			return
		}
		notes, err := r.client.Notes(ctx)
		if err != nil {
			yield(nil, &core.SourceReadError{Source: core.SourceGoogleKeep, Origin: "keep:list", Err: err})
			return
		}
		for _, n := range notes {
			if n.Trashed {
				continue
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

var (
	_ core.Reader        = (*APIReader)(nil)
	_ core.Authenticator = (*APIReader)(nil)
)
