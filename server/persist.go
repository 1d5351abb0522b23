package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/ratelimit"
)

// persister writes committed states to the store, collapsing bursts of
// commits into one SaveGraph per quiet period.
type persister struct {
	store   nodegraph.Store
	graphID string
	logger  *slog.Logger
	save    *ratelimit.Debounce[*nodegraph.Graph]
}

func newPersister(store nodegraph.Store, graphID string, wait time.Duration, logger *slog.Logger) *persister {
	p := &persister{store: store, graphID: graphID, logger: logger}
	p.save = ratelimit.NewDebounce(wait, p.write)
	return p
}

// commit is the editor's OnChange hook.
func (p *persister) commit(g *nodegraph.Graph) {
	commitsTotal.Inc()
	graphNodes.Set(float64(len(g.Nodes)))
	p.save.Invoke(g)
}

// flush writes the pending state, if any, before returning.
func (p *persister) flush() {
	p.save.Flush()
}

func (p *persister) write(g *nodegraph.Graph) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := p.store.SaveGraph(ctx, p.graphID, g)
	status := "success"
	if err != nil {
		status = "error"
		p.logger.Error("persist failed", slog.String("graph", p.graphID), slog.Any("error", err))
	} else {
		p.logger.Debug("graph persisted", slog.String("graph", p.graphID), slog.Int("nodes", len(g.Nodes)))
	}
	persistDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
