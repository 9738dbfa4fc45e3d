package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/logger"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BasePath prefixes every forum endpoint
const BasePath = "/api/v1"

type call struct {
	method      string
	path        string
	requireAuth bool
	query       map[string]string
	body        interface{}
	out         interface{}
	// cacheKey serves a GET from the response cache and stores 200 bodies in it
	cacheKey    string
}

// do sends c and decodes a JSON body into c.out. A 204 or empty body leaves
// c.out at its zero value.
// A cache hit returns a nil response.
func do(ctx context.Context, c call) (*resty.Response, error) {
	if c.cacheKey != "" {
		if body, ok := cache.Shared().Get(c.cacheKey); ok {
			logger.Debug("Cache hit", "key", c.cacheKey)
			return nil, decode(body, c.out)
		}
	}

	req, err := client.Request(ctx, c.requireAuth)
	if err != nil {
		return nil, err
	}

	if len(c.query) > 0 {
		req.SetQueryParams(c.query)
	}

	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		req.SetBody(data)
	}

	resp, err := req.Execute(c.method, BasePath+c.path)
	if err := CheckResponse(resp, err); err != nil {
		return resp, err
	}

	if resp.StatusCode() == http.StatusNoContent {
		return resp, nil
	}
	if err := decode(resp.Body(), c.out); err != nil {
		return resp, err
	}

	if c.cacheKey != "" && resp.StatusCode() == http.StatusOK {
		cache.Shared().Set(c.cacheKey, resp.Body())
	}
	return resp, nil
}

func decode(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
