// Package field implements the Field layer: bind-config route selection and
// the PipeEx cooperative pipeline executor that runs between a wave's entry
// into a particle and its delivery to Core.
//
// Grounded on the teacher's (re-cinq-wave) internal/pipeline.Router
// (priority-ordered rule matching, glob patterns via filepath.Match) for
// route selection, and internal/pipeline.DefaultPipelineExecutor (in-progress
// map guarded by a mutex, functional options) for PipeEx's own construction
// and bookkeeping.
package field

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/starlane-io/starlane/internal/wave"
)

// RouteScope selects a Pipeline for directed waves whose Core matches its
// Method/Path/Topic patterns. "*" (or "") matches anything in any of the
// three fields.
type RouteScope struct {
	Method   string   `yaml:"method"`
	Path     string   `yaml:"path"`
	Topic    string   `yaml:"topic"`
	Pipeline Pipeline `yaml:"pipeline"`
	Priority int      `yaml:"priority"`
}

// BindConfig is a particle's full routing table: an ordered set of route
// scopes, evaluated highest-priority first, falling back to a synthetic
// passthrough pipeline if nothing matches a Cmd-kind method (spec.md §4.6).
type BindConfig struct {
	Routes []RouteScope `yaml:"routes"`

	sorted []RouteScope
}

// Compile sorts b's routes by descending priority (stable, so equal
// priorities keep YAML declaration order) and must be called once after
// loading a BindConfig from YAML before Select is used.
func (b *BindConfig) Compile() {
	b.sorted = make([]RouteScope, len(b.Routes))
	copy(b.sorted, b.Routes)
	sort.SliceStable(b.sorted, func(i, j int) bool {
		return b.sorted[i].Priority > b.sorted[j].Priority
	})
}

// PassthroughPipeline is the synthetic pipeline used for a Cmd-kind method
// with no matching route: deliver straight to Core with no validation, then
// reflect whatever Core returns (spec.md §4.6: "synthesize the implicit
// pipeline [Step(direct,direct,[]) -> Stop::Core ; Step(rtn,rtn,[]) ->
// Stop::Reflect]").
var PassthroughPipeline = Pipeline{
	Segments: []PipelineSegment{
		{Step: Step{Entry: EntryExitDirect, Exit: EntryExitDirect}, Stop: Stop{Kind: StopCore}},
		{Step: Step{Entry: EntryExitRtn, Exit: EntryExitRtn}, Stop: Stop{Kind: StopReflect}},
	},
}

// Select returns the Pipeline bound to core's method/uri/topic, following
// route priority order; ok is false if nothing matched and core's method is
// not a Cmd (Cmd falls back to PassthroughPipeline instead of failing).
func (b *BindConfig) Select(core wave.Core, topic string) (Pipeline, bool) {
	if b.sorted == nil && len(b.Routes) > 0 {
		b.Compile()
	}
	for _, r := range b.sorted {
		if matchPattern(r.Method, core.Method.Name) && matchPattern(r.Path, core.Uri) && matchPattern(r.Topic, topic) {
			return r.Pipeline, true
		}
	}
	if core.Method.IsCmd() {
		return PassthroughPipeline, true
	}
	return Pipeline{}, false
}

func matchPattern(pattern, value string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	if ok, err := filepath.Match(pattern, value); err == nil && ok {
		return true
	}
	return strings.EqualFold(pattern, value)
}
