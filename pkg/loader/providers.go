package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/oakwood-commons/filterbar/internal/config"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// maxOptionsBody caps how much of an options_url response is read.
const maxOptionsBody = 4 << 20

// FileOptions reads one option per line from path and returns a provider
// filtering them by case-insensitive substring match. Blank lines and lines
// starting with # are skipped. A line of the form "label<TAB>value" sets both.
func FileOptions(path string) (filter.SyncOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("options_file: %w", err)
	}
	all := parseOptionLines(data)
	return func(search string) []filter.Option {
		return matching(all, search)
	}, nil
}

func parseOptionLines(data []byte) []filter.Option {
	var out []filter.Option
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if label, value, ok := strings.Cut(line, "\t"); ok {
			out = append(out, filter.Option{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
			continue
		}
		out = append(out, filter.Option{Label: line, Value: line})
	}
	return out
}

func matching(all []filter.Option, search string) []filter.Option {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]filter.Option, 0, len(all))
	for _, o := range all {
		if needle == "" || strings.Contains(strings.ToLower(o.Label), needle) {
			out = append(out, o)
		}
	}
	return out
}

// URLOptions returns a provider issuing GET <endpoint>?search=<text>. The
// response is a JSON array whose entries are strings or {label, value}
// objects, optionally wrapped as {"options": [...]}.
func URLOptions(endpoint string, client *http.Client) filter.AsyncOptions {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, search string) ([]filter.Option, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("options_url: %w", err)
		}
		q := u.Query()
		q.Set("search", search)
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("options_url: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		logger.FromContext(ctx).V(1).Info("fetching options", "url", u.Redacted())
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("options_url: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxOptionsBody))
		if err != nil {
			return nil, fmt.Errorf("options_url: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("options_url: %s", resp.Status)
		}
		return decodeOptions(body)
	}
}

func decodeOptions(body []byte) ([]filter.Option, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var wrapped struct {
			Options json.RawMessage `json:"options"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("options_url: %w", err)
		}
		body = wrapped.Options
	}
	var decls []config.OptionDecl
	if err := json.Unmarshal(body, &decls); err != nil {
		return nil, fmt.Errorf("options_url: %w", err)
	}
	out := make([]filter.Option, 0, len(decls))
	for _, d := range decls {
		if d.Custom != nil {
			continue
		}
		out = append(out, filter.Option{Label: d.DisplayLabel(), Value: d.Value})
	}
	return out, nil
}
