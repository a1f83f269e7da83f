package seam

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ServeInfo makes ServeHTTP answer GET requests for path with the route
// description as JSON. The path is not a route and is not listed by Info.
func (a *Api) ServeInfo(path string) {
	a.infoPath = path
}

func (a *Api) serveInfo(w http.ResponseWriter) {
	b, err := json.Marshal(a.Info())
	if err != nil {
		ErrorResponse(ServerError(fmt.Sprintf("encode info: %v", err))).WriteHTTP(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck,gosec // best-effort after WriteHeader
	w.Write(b)
}

// WriteInfo writes the route description as indented JSON to w.
func (a *Api) WriteInfo(w io.Writer) error {
	b, err := json.MarshalIndent(a.Info(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode info: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteInfoYAML writes the route description as YAML to w.
func (a *Api) WriteInfoYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a.Info()); err != nil {
		return fmt.Errorf("encode info: %w", err)
	}
	return enc.Close()
}

// ReadInfo decodes a document written by WriteInfo.
func ReadInfo(r io.Reader) ([]RouteInfo, error) {
	var out []RouteInfo
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode info: %w", err)
	}
	return out, nil
}
