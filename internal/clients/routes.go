package clients

// Source is one selectable data source and the remote path serving it.
type Source struct {
	Key   string
	Title string
	Path  string
}

// RouteTable is the closed set of data sources, in selector order.
type RouteTable struct {
	sources []Source
	byKey   map[string]Source
}

// NewRouteTable builds the table for the general summary plus one
// per-entity route for each entity key.
func NewRouteTable(generalKey string, entities []string, titles map[string]string) *RouteTable {
	rt := &RouteTable{byKey: make(map[string]Source, len(entities)+1)}
	rt.add(Source{Key: generalKey, Title: titles[generalKey], Path: SUMMARY_ENDPOINT})
	for _, entity := range entities {
		rt.add(Source{Key: entity, Title: titles[entity], Path: ENTITY_SUMMARY_PREFIX + entity})
	}
	return rt
}

func (rt *RouteTable) add(src Source) {
	if _, exists := rt.byKey[src.Key]; exists {
		return
	}
	if src.Title == "" {
		src.Title = src.Key
	}
	rt.sources = append(rt.sources, src)
	rt.byKey[src.Key] = src
}

func (rt *RouteTable) Resolve(key string) (Source, error) {
	src, ok := rt.byKey[key]
	if !ok {
		return Source{}, &ConfigurationError{Key: key}
	}
	return src, nil
}

func (rt *RouteTable) Has(key string) bool {
	_, ok := rt.byKey[key]
	return ok
}

func (rt *RouteTable) Sources() []Source {
	return append([]Source(nil), rt.sources...)
}
