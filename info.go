package seam

// RouteInfo describes one route for client generators.
type RouteInfo struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	Method       string `json:"method" yaml:"method"`
	RequestType  *Info  `json:"request_type,omitempty" yaml:"request_type,omitempty"`
	ResponseType *Info  `json:"response_type,omitempty" yaml:"response_type,omitempty"`
}

// Info describes every route in registration order. It never runs a
// handler and may be called at any time.
func (a *Api) Info() []RouteInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]RouteInfo, 0, len(a.routes))
	for _, r := range a.routes {
		ri := RouteInfo{
			Name:        r.key,
			Description: r.desc,
			Method:      r.method,
		}
		if r.handler.body != nil {
			info := r.handler.body.info
			ri.RequestType = &info
		}
		if r.handler.resp != nil {
			info := *r.handler.resp
			ri.ResponseType = &info
		}
		out = append(out, ri)
	}
	return out
}
