// Package portal is the typed resource API of the college backend, grouped by
// the role that uses it.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-college-portal/apiclient"
)

// Doer sends a request and decodes the response envelope's data into out.
// *apiclient.Dispatcher satisfies it.
type Doer interface {
	Do(ctx context.Context, endpoint string, opts apiclient.RequestOptions, out any) error
}

// DefaultPageSize is used when a listing is asked for size 0
const DefaultPageSize = 10

// API groups the role specific clients over one Doer
type API struct {
	Admin   *Admin
	Faculty *Faculty
	Student *Student
	Catalog *Catalog
}

func New(d Doer) *API {
	return &API{
		Admin:   &Admin{d: d},
		Faculty: &Faculty{d: d},
		Student: &Student{d: d},
		Catalog: &Catalog{d: d},
	}
}

func get(ctx context.Context, d Doer, endpoint string, params url.Values, out any) error {
	return d.Do(ctx, endpoint, apiclient.RequestOptions{Method: http.MethodGet, Params: params}, out)
}

func send(ctx context.Context, d Doer, method, endpoint string, body, out any) error {
	return d.Do(ctx, endpoint, apiclient.RequestOptions{Method: method, Body: body}, out)
}

func pageParams(page, size int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
}

func path(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			escaped[i] = url.PathEscape(v)
		default:
			escaped[i] = v
		}
	}
	return fmt.Sprintf(format, escaped...)
}
