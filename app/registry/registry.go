package registry

// KnownTool is a tool already present in the document, or accepted earlier
// in the current run.
type KnownTool struct {
	Key         string
	Name        string
	URL         string
	Description string
}

// Registry indexes known tools by normalized name and by normalized domain.
// It only grows; insertion order is kept for prompts and sampling.
type Registry struct {
	tools       map[string]KnownTool
	domains     map[string]string
	order       []string
	sharedHosts []string
}

func NewRegistry(sharedHosts []string) *Registry {
	return &Registry{
		tools:       make(map[string]KnownTool),
		domains:     make(map[string]string),
		sharedHosts: sharedHosts,
	}
}

// Add registers a tool and reports whether it was new. Names that normalize
// to an empty key are ignored.
func (r *Registry) Add(name, url, description string) bool {
	key := NormalizeName(name)
	if key == "" {
		return false
	}
	if _, exists := r.tools[key]; exists {
		return false
	}

	r.tools[key] = KnownTool{Key: key, Name: name, URL: url, Description: description}
	r.order = append(r.order, key)

	if domain := r.Domain(url); domain != "" {
		if _, exists := r.domains[domain]; !exists {
			r.domains[domain] = key
		}
	}
	return true
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[NormalizeName(name)]
	return ok
}

func (r *Registry) Lookup(name string) (KnownTool, bool) {
	tool, ok := r.tools[NormalizeName(name)]
	return tool, ok
}

// LookupDomain finds the first registered tool whose URL shares the
// normalized domain of url.
func (r *Registry) LookupDomain(url string) (KnownTool, bool) {
	domain := r.Domain(url)
	if domain == "" {
		return KnownTool{}, false
	}
	key, ok := r.domains[domain]
	if !ok {
		return KnownTool{}, false
	}
	return r.tools[key], true
}

func (r *Registry) Domain(url string) string {
	return NormalizeDomain(url, r.sharedHosts...)
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns display names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.tools[key].Name)
	}
	return names
}

// Sample returns the first n tools in insertion order.
func (r *Registry) Sample(n int) []KnownTool {
	if n <= 0 || n > len(r.order) {
		n = len(r.order)
	}
	sample := make([]KnownTool, 0, n)
	for _, key := range r.order[:n] {
		sample = append(sample, r.tools[key])
	}
	return sample
}
