package summarizer

import "strings"

// Registry holds the two loaded models.
type Registry struct {
	bart   *Model
	t5     *Model
	closer func() error
}

func NewRegistry(bart, t5 *Model) *Registry {
	return &Registry{bart: bart, t5: t5}
}

func (r *Registry) BART() *Model { return r.bart }
func (r *Registry) T5() *Model   { return r.t5 }

// Resolve picks BART for "bart" in any case; every other name, including
// an unknown one, falls through to T5.
func (r *Registry) Resolve(name string) *Model {
	if strings.EqualFold(strings.TrimSpace(name), KeyBART) {
		return r.bart
	}
	return r.t5
}

// List returns the models in display order.
func (r *Registry) List() []*Model {
	return []*Model{r.bart, r.t5}
}

// Close releases the inference session behind the models, if any.
func (r *Registry) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
