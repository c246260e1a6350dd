// Package studio wires the three simulated tools together with the tab the
// user is looking at.
package studio

import (
	"context"
	"sync"

	apperrors "github.com/socialchef/cocktail-studio/internal/errors"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/metrics"
	"github.com/socialchef/cocktail-studio/internal/services/recipe"
	"github.com/socialchef/cocktail-studio/internal/services/research"
	"github.com/socialchef/cocktail-studio/internal/services/visual"
	"golang.org/x/sync/errgroup"
)

// Tab is a navigation section of the studio.
type Tab string

const (
	TabIdeas    Tab = "ideas"
	TabStudio   Tab = "studio"
	TabResearch Tab = "research"
)

// Tabs lists the sections in display order.
var Tabs = []Tab{TabIdeas, TabStudio, TabResearch}

// Flow returns the flow shown on the tab.
func (t Tab) Flow() flow.Kind {
	switch t {
	case TabStudio:
		return flow.KindVisual
	case TabResearch:
		return flow.KindResearch
	default:
		return flow.KindIdeas
	}
}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", apperrors.NewValidationError("unknown tab: "+s, "INVALID_TAB", "Use one of: ideas, studio, research.")
}

// Options configures a Studio. Zero Windows entries fall back to
// flow.DefaultWindows, a nil Provider to the template provider.
type Options struct {
	Store      flow.Store
	Dispatcher flow.Dispatcher
	Delays     flow.DelaySource
	Windows    map[flow.Kind]flow.Window
	Provider   recipe.Provider
}

// Snapshot is the full observable state of the studio.
type Snapshot struct {
	Active   Tab                         `json:"active"`
	Showing  flow.Kind                   `json:"showing"`
	Ideas    flow.State[[]recipe.Recipe] `json:"ideas"`
	Visual   flow.State[string]          `json:"visual"`
	Research flow.State[string]          `json:"research"`
}

// Studio owns one flow per tool. Each flow has its own slot in the store;
// nothing is shared between them.
type Studio struct {
	Ideas    *flow.Flow[[]recipe.Recipe]
	Visual   *flow.Flow[string]
	Research *flow.Flow[string]

	mu     sync.RWMutex
	active Tab
}

// New builds a Studio from opts.
func New(opts Options) *Studio {
	provider := opts.Provider
	if provider == nil {
		provider = recipe.NewTemplateProvider()
	}

	window := func(kind flow.Kind) flow.Window {
		if w, ok := opts.Windows[kind]; ok && w != (flow.Window{}) {
			return w
		}
		return flow.DefaultWindows[kind]
	}

	return &Studio{
		Ideas: flow.New(flow.Config[[]recipe.Recipe]{
			Kind:    flow.KindIdeas,
			Window:  window(flow.KindIdeas),
			Compute: provider.Ideate,
			Initial: []recipe.Recipe{},
		}, opts.Store, opts.Dispatcher, opts.Delays),
		Visual: flow.New(flow.Config[string]{
			Kind:   flow.KindVisual,
			Window: window(flow.KindVisual),
			Compute: func(_ context.Context, safe string) (string, error) {
				return visual.BuildPreview(safe), nil
			},
		}, opts.Store, opts.Dispatcher, opts.Delays),
		Research: flow.New(flow.Config[string]{
			Kind:   flow.KindResearch,
			Window: window(flow.KindResearch),
			Compute: func(_ context.Context, safe string) (string, error) {
				return research.Summarize(safe), nil
			},
		}, opts.Store, opts.Dispatcher, opts.Delays),
		active: TabIdeas,
	}
}

// Active returns the selected tab.
func (s *Studio) Active() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive selects a tab by name.
func (s *Studio) SetActive(ctx context.Context, name string) (Tab, error) {
	tab, err := ParseTab(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	changed := s.active != tab
	s.active = tab
	s.mu.Unlock()

	if changed {
		metrics.RecordTabSwitch(ctx, string(tab))
	}
	return tab, nil
}

// Trigger starts the named flow.
func (s *Studio) Trigger(ctx context.Context, kind flow.Kind, input string) (bool, error) {
	switch kind {
	case flow.KindIdeas:
		return s.Ideas.Trigger(ctx, input)
	case flow.KindVisual:
		return s.Visual.Trigger(ctx, input)
	case flow.KindResearch:
		return s.Research.Trigger(ctx, input)
	default:
		return false, unknownFlow(kind)
	}
}

// FlowState returns the snapshot of the named flow.
func (s *Studio) FlowState(ctx context.Context, kind flow.Kind) (any, error) {
	switch kind {
	case flow.KindIdeas:
		return s.Ideas.Snapshot(ctx)
	case flow.KindVisual:
		return s.Visual.Snapshot(ctx)
	case flow.KindResearch:
		return s.Research.Snapshot(ctx)
	default:
		return nil, unknownFlow(kind)
	}
}

// Snapshot returns the active tab and all three flow states. The slots are
// read concurrently.
func (s *Studio) Snapshot(ctx context.Context) (Snapshot, error) {
	active := s.Active()
	snap := Snapshot{Active: active, Showing: active.Flow()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Ideas, err = s.Ideas.Snapshot(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Visual, err = s.Visual.Snapshot(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Research, err = s.Research.Snapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func unknownFlow(kind flow.Kind) error {
	return apperrors.NewNotFoundError("unknown flow: "+string(kind), "FLOW_NOT_FOUND", "Use one of: ideas, visual, research.")
}
