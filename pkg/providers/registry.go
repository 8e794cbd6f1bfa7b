// Package providers maps (provider, action, generic payload) pairs to
// concrete vendor HTTP requests. One adapter per provider, selected once per
// request by provider value.
package providers

import (
	"github.com/opsdeck/opsdeck/pkg/domain"
	"github.com/opsdeck/opsdeck/pkg/providers/circleci"
	"github.com/opsdeck/opsdeck/pkg/providers/githubactions"
	"github.com/opsdeck/opsdeck/pkg/providers/jenkins"
)

type Registry struct {
	adapters map[domain.Provider]domain.ProviderAdapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: map[domain.Provider]domain.ProviderAdapter{
			domain.ProviderGithubActions: githubactions.NewAdapter(),
			domain.ProviderCircleCI:      circleci.NewAdapter(),
			domain.ProviderJenkins:       jenkins.NewAdapter(),
		},
	}
}

func (r *Registry) Adapter(provider domain.Provider) (domain.ProviderAdapter, bool) {
	adapter, ok := r.adapters[provider]
	return adapter, ok
}
