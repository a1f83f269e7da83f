package seam

// Group registers routes under a shared key prefix, such as "maths.".
type Group struct {
	api    *Api
	prefix string
}

// Group creates a new route group with the given key prefix.
func (a *Api) Group(prefix string) *Group {
	return &Group{api: a, prefix: prefix}
}

// Group creates a nested group whose prefix extends g's.
func (g *Group) Group(prefix string) *Group {
	return &Group{api: g.api, prefix: g.prefix + prefix}
}

// Add starts the registration of prefix+key.
func (g *Group) Add(key string) *RouteBuilder {
	return g.api.Add(g.prefix + key)
}
