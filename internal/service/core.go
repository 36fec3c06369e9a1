package service

import (
	"time"

	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/repository"
)

// Core bundles the authorization layer shared by every service.
type Core struct {
	Store   *repository.Store
	Graph   *RelationshipGraph
	Guard   *Guard
	Enforce *ConsistencyEnforcer
	Metrics *metrics.Manager
	Now     func() time.Time
}

func NewCore(store *repository.Store, metricsManager *metrics.Manager) *Core {
	graph := NewRelationshipGraph(store)
	return &Core{
		Store:   store,
		Graph:   graph,
		Guard:   NewGuard(graph),
		Enforce: NewConsistencyEnforcer(store),
		Metrics: metricsManager,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}
