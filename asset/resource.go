package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrUnsupportedScheme = errors.New("asset: unsupported resource scheme")

// Resource is a readable scene asset (mesh, material library, texture or
// scene description) backed by a local file or an http/https URL.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path or URL of this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the base name of the resource.
func (r *Resource) Name() string {
	return path.Base(r.url.Path)
}

// Returns the lower-case extension of the resource, including the dot.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns true if the resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme == "http" || r.url.Scheme == "https"
}

// Open a resource stream. If relTo is specified and pathToResource is a
// relative path without a scheme, it is resolved against the directory
// containing relTo; this allows a remote wavefront file to reference
// material libraries and textures next to it.
//
// The caller must close the returned resource.
func Open(ctx context.Context, pathToResource string, relTo *Resource) (*Resource, error) {
	// Windows paths use backslashes as separators
	resURL, err := url.Parse(strings.ReplaceAll(pathToResource, `\`, `/`))
	if err != nil {
		return nil, fmt.Errorf("asset: invalid resource path %q: %w", pathToResource, err)
	}

	if resURL.Scheme == "" && relTo != nil && !filepath.IsAbs(resURL.Path) {
		relPath := resURL.Path
		resURL = cloneURL(relTo.url)
		dir := path.Dir(resURL.Path)
		if !relTo.IsRemote() {
			abs, err := filepath.Abs(relTo.url.Path)
			if err != nil {
				return nil, fmt.Errorf("asset: could not detect abs path for %s: %w", relTo.Path(), err)
			}
			dir = filepath.ToSlash(filepath.Dir(abs))
		}
		resURL.Path = dir + "/" + relPath
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "", "file":
		reader, err = os.Open(filepath.Clean(filepath.FromSlash(resURL.Path)))
		if err != nil {
			return nil, fmt.Errorf("asset: %w", err)
		}
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, resURL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch %q: %w", resURL.String(), err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch %q: %w", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("asset: could not fetch %q: status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Create a resource from an in-memory stream. Relative resources opened
// against it resolve next to name.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(filepath.ToSlash(name))
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}

func cloneURL(u *url.URL) *url.URL {
	clone := *u
	if u.User != nil {
		user := *u.User
		clone.User = &user
	}
	return &clone
}
