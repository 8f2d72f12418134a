package wp

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const themePage = `<!doctype html>
<html><body>
<article>
  <header><h1>Hello</h1></header>
  <div class="entry-content clr"><p>First</p><div class="inner"><p>Second</p></div></div>
</article>
</body></html>`

func TestFetchFullContent(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, themePage)
	})

	html, err := c.FetchFullContent(context.Background(), srv.URL+"/hello-world/")
	require.NoError(t, err)
	assert.Equal(t, `<p>First</p><div class="inner"><p>Second</p></div>`, html)
}

func TestFetchFullContentErrors(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone/" {
			w.WriteHeader(http.StatusGone)
			return
		}
		io.WriteString(w, `<html><body><p>no wrapper</p></body></html>`)
	})
	ctx := context.Background()

	_, err := c.FetchFullContent(ctx, srv.URL+"/gone/")
	assert.ErrorIs(t, err, ErrUnreachable)

	_, err = c.FetchFullContent(ctx, srv.URL+"/plain/")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchFullContent(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractEntryContentEmpty(t *testing.T) {
	_, err := ExtractEntryContent([]byte(`<div class="entry-content">   </div>`))
	assert.ErrorIs(t, err, ErrNotFound)
}
