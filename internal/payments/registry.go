package payments

import "fmt"

type Registry struct {
	providers map[Name]Provider
	order     []Name
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: map[Name]Provider{}}
	for _, p := range ps {
		if _, dup := r.providers[p.Name()]; !dup {
			r.order = append(r.order, p.Name())
		}
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name Name) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, NewError(KindMisconfigured, name, fmt.Sprintf("payment provider %q is not enabled", name), nil)
	}
	return p, nil
}

func (r *Registry) Enabled() []Name {
	out := make([]Name, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Has(name Name) bool {
	_, ok := r.providers[name]
	return ok
}
