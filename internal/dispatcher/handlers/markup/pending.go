package markup

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/markup"
)

type settleState uint8

const (
	settledPending settleState = iota
	settledResolved
	settledCancelled
)

// pendingRequest is an image or link action waiting for metadata.
type pendingRequest struct {
	id        string
	action    string
	req       *markup.Request
	sel       *selection.Selection
	previewer execctx.PreviewRenderer

	// guarded by pendingTable.mu
	resolved    bool
	dispatching bool
	edit        handler.Edit
}

// pendingTable tracks open requests by id.
type pendingTable struct {
	mu       sync.Mutex
	requests map[string]*pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{requests: make(map[string]*pendingRequest)}
}

// open registers a new request. While dispatching is set the preview refresh
// is left to the dispatcher's post hooks.
func (t *pendingTable) open(action string, req *markup.Request, sel *selection.Selection, previewer execctx.PreviewRenderer) *pendingRequest {
	p := &pendingRequest{
		id:          uuid.NewString(),
		action:      action,
		req:         req,
		sel:         sel,
		previewer:   previewer,
		dispatching: true,
	}

	t.mu.Lock()
	t.requests[p.id] = p
	t.mu.Unlock()
	return p
}

// resolve completes p with meta. It applies the edit at most once.
func (t *pendingTable) resolve(p *pendingRequest, meta markup.Metadata) error {
	t.mu.Lock()
	if p.resolved {
		t.mu.Unlock()
		return ErrRequestResolved
	}
	if _, ok := t.requests[p.id]; !ok {
		t.mu.Unlock()
		return ErrRequestNotFound
	}

	c, err := p.req.Complete(meta)
	if err != nil {
		t.mu.Unlock()
		return err
	}

	p.edit = applyChange(p.sel, c)
	p.resolved = true
	delete(t.requests, p.id)
	refresh := !p.dispatching
	t.mu.Unlock()

	if refresh && p.previewer != nil {
		p.previewer.Refresh(p.sel.Value())
	}
	return nil
}

// settle ends the dispatch phase of p and reports its state.
func (t *pendingTable) settle(p *pendingRequest) (settleState, handler.Edit) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p.dispatching = false
	if p.resolved {
		return settledResolved, p.edit
	}
	if _, ok := t.requests[p.id]; !ok {
		return settledCancelled, handler.Edit{}
	}
	return settledPending, handler.Edit{}
}

func (t *pendingTable) get(id string) (*pendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.requests[id]
	return p, ok
}

func (t *pendingTable) cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.requests[id]; !ok {
		return false
	}
	delete(t.requests, id)
	return true
}

func (t *pendingTable) ids() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.requests))
	for id := range t.requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
