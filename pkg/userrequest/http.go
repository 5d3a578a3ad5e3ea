package userrequest

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const httpLogPrefix = "userrequest:http"

// FromHTTP decodes r mounted under uriPrefix. The path is percent-decoded as UTF-8 and
// query/form parameters are flattened to their first value. Multipart bodies are never
// read so upload streams stay intact.
func FromHTTP(uriPrefix string, r *http.Request) (*UserRequest, error) {
	decoded, err := url.PathUnescape(r.URL.EscapedPath())
	if err != nil {
		return nil, assertErr(ErrMalformedPath, r.URL.EscapedPath())
	}

	if slog.Default().Enabled(r.Context(), slog.LevelDebug) {
		logRequest(r.Context(), r)
	}

	params, err := FlattenParameters(r)
	if err != nil {
		return nil, err
	}
	return Parse(uriPrefix, decoded, params)
}

// FlattenParameters returns the first value of every query and form parameter. For
// multipart requests only the query string is used.
func FlattenParameters(r *http.Request) (map[string]string, error) {
	var values url.Values
	if isMultipart(r) {
		values = r.URL.Query()
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%s - failed to parse form: %w", httpLogPrefix, err)
		}
		values = r.Form
	}

	params := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params, nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(ct), "multipart/")
	}
	return strings.HasPrefix(mediaType, "multipart/")
}

// logRequest writes the request metadata at debug level. Form values are only read for
// urlencoded bodies.
func logRequest(ctx context.Context, r *http.Request) {
	var sb strings.Builder
	sb.WriteString("Request Parameters:")
	appendKV(&sb, "URI", r.URL.RequestURI())
	appendKV(&sb, "Protocol", r.Proto)
	appendKV(&sb, "HTTP Method", r.Method)
	appendKV(&sb, "Host", r.Host)
	appendKV(&sb, "Remote Addr", r.RemoteAddr)
	appendKV(&sb, "Content Length", r.ContentLength)
	appendKV(&sb, "Content Type", r.Header.Get("Content-Type"))
	appendKV(&sb, "QueryString", r.URL.RawQuery)

	sb.WriteString("\nHeaders in this request:")
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		appendKV(&sb, name, r.Header.Get(name))
	}

	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err == nil {
			sb.WriteString("\nParameter names in this request:")
			keys := make([]string, 0, len(r.PostForm))
			for k := range r.PostForm {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				appendKV(&sb, k, strings.Join(r.PostForm[k], " "))
			}
		}
	}
	slog.DebugContext(ctx, fmt.Sprintf("%s - %s", httpLogPrefix, sb.String()))
}

func appendKV(sb *strings.Builder, key string, value interface{}) {
	fmt.Fprintf(sb, "\n%s : %v", key, value)
}
