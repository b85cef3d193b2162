package handlers

import (
	"context"
	"net/http"
	"testing"

	"portfolio-api/internal/portfolio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		path   string
		id     string
		isItem bool
		ok     bool
	}{
		{path: "/portfolios", ok: true},
		{path: "/portfolios/", ok: true},
		{path: "/prod/portfolios", ok: true},
		{path: "/portfolios/abc", id: "abc", isItem: true, ok: true},
		{path: "/prod/portfolios/a%20b", id: "a b", isItem: true, ok: true},
		{path: "/other", ok: false},
		{path: "/portfolios/abc/extra", ok: false},
		{path: "/portfolios/portfolios", id: "portfolios", isItem: true, ok: true},
		{path: "/prod/portfolios/portfolios", id: "portfolios", isItem: true, ok: true},
		{path: "/x/y/portfolios", ok: false},
		{path: "/x/y/portfolios/abc", ok: false},
		{path: "/", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id, isItem, ok := matchPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.isItem, isItem)
				assert.Equal(t, tt.id, id)
			}
		})
	}
}

func TestRouteOptionsBypassesRouting(t *testing.T) {
	h := newTestHandlers(newMemStore(), nil)

	resp, err := h.Route(context.Background(), request("OPTIONS", "/portfolios/anything/at/all", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertCORS(t, resp.Headers)
}

func TestRouteDispatch(t *testing.T) {
	store := newMemStore()
	h := newTestHandlers(store, nil)
	ctx := context.Background()

	created := mustResp(h.Route(ctx, request("POST", "/portfolios", "", `{"name":"Ada"}`)))
	require.Equal(t, http.StatusCreated, created.StatusCode)
	p := decode[portfolio.Portfolio](t, created)

	got := mustResp(h.Route(ctx, request("GET", "/portfolios/"+p.ID, "", "")))
	assert.Equal(t, http.StatusOK, got.StatusCode)

	list := mustResp(h.Route(ctx, request("GET", "/dev/portfolios", "", "")))
	assert.Equal(t, http.StatusOK, list.StatusCode)

	upd := mustResp(h.Route(ctx, request("PUT", "/portfolios/"+p.ID, "", `{"name":"Grace"}`)))
	assert.Equal(t, "Grace", decode[portfolio.Portfolio](t, upd).Name)

	del := mustResp(h.Route(ctx, request("DELETE", "/portfolios/"+p.ID, "", "")))
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
}

func TestRouteRecordNamedLikeCollection(t *testing.T) {
	store := newMemStore()
	store.items["portfolios"] = portfolio.Portfolio{ID: "portfolios", Name: "Ada", Skills: []string{}}
	h := newTestHandlers(store, nil)

	resp := mustResp(h.Route(context.Background(), request("GET", "/portfolios/portfolios", "", "")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "portfolios", decode[portfolio.Portfolio](t, resp).ID)
	assert.Equal(t, 0, store.scans)
}

func TestRouteUnknown(t *testing.T) {
	h := newTestHandlers(newMemStore(), nil)
	ctx := context.Background()

	notFound := mustResp(h.Route(ctx, request("GET", "/nope", "", "")))
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)

	deep := mustResp(h.Route(ctx, request("GET", "/x/y/portfolios", "", "")))
	assert.Equal(t, http.StatusNotFound, deep.StatusCode)

	patch := mustResp(h.Route(ctx, request("PATCH", "/portfolios/abc", "", "")))
	assert.Equal(t, http.StatusMethodNotAllowed, patch.StatusCode)

	put := mustResp(h.Route(ctx, request("PUT", "/portfolios", "", "")))
	assert.Equal(t, http.StatusMethodNotAllowed, put.StatusCode)
}
