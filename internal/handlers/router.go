package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

const collection = "portfolios"

// Route dispatches a request by method and path for the single-function
// deployment. Paths may carry a stage prefix ("/prod/portfolios/{id}").
// OPTIONS is answered before any path matching.
func (h *Portfolios) Route(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(req.RequestContext.HTTP.Method)
	if method == http.MethodOptions {
		return Preflight(), nil
	}

	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}

	id, isItem, ok := matchPath(path)
	if !ok {
		return errResp(http.StatusNotFound, "Not found")
	}

	if !isItem {
		switch method {
		case http.MethodGet:
			return h.GetAll(ctx, req)
		case http.MethodPost:
			return h.Create(ctx, req)
		default:
			return errResp(http.StatusMethodNotAllowed, "Method not allowed")
		}
	}

	req.PathParameters = withID(req.PathParameters, id)
	switch method {
	case http.MethodGet:
		return h.GetOne(ctx, req)
	case http.MethodPut:
		return h.Update(ctx, req)
	case http.MethodDelete:
		return h.Delete(ctx, req)
	default:
		return errResp(http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// matchPath recognises "/portfolios" and "/portfolios/{id}", optionally
// behind a single stage segment. "/portfolios/portfolios" is the record
// with id "portfolios", not a staged collection.
func matchPath(path string) (id string, isItem bool, ok bool) {
	segs := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(segs) == 1 && segs[0] == collection:
		return "", false, true
	case len(segs) == 2 && segs[0] == collection:
		return itemID(segs[1])
	case len(segs) == 2 && segs[1] == collection:
		return "", false, true
	case len(segs) == 3 && segs[1] == collection:
		return itemID(segs[2])
	}
	return "", false, false
}

func itemID(seg string) (string, bool, bool) {
	raw, err := url.PathUnescape(seg)
	if err != nil || raw == "" {
		return "", true, false
	}
	return raw, true, true
}

func withID(params map[string]string, id string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	if strings.TrimSpace(out["id"]) == "" {
		out["id"] = id
	}
	return out
}
