package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/wfpack/pkg/types"
)

// Recorder is a types.Reporter that keeps every event as a line of text
type Recorder struct {
	mu     sync.Mutex
	Events []string
	Result *types.InstallResult
}

var _ types.Reporter = (*Recorder)(nil)

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf(format, args...))
}

func (r *Recorder) Resolved(ctx types.InstallContext) { r.add("resolved %s", ctx.Mode) }
func (r *Recorder) AtProjectRoot(ctx types.InstallContext) {
	r.add("at-root %s", ctx.Reason)
}
func (r *Recorder) Installing(entry types.ManifestEntry) {
	r.add("installing %s", entry.Destination())
}
func (r *Recorder) Skipped(dest, reason string) { r.add("skipped %s: %s", dest, reason) }
func (r *Recorder) Cleaning(dir string)         { r.add("cleaning %s", dir) }
func (r *Recorder) Removed(path string)         { r.add("removed %s", path) }
func (r *Recorder) Refused(v types.Verdict)     { r.add("refused %s: %s", v.Path, v.Rule) }
func (r *Recorder) Warn(msg string)             { r.add("warn %s", msg) }

func (r *Recorder) Done(result *types.InstallResult) {
	r.mu.Lock()
	r.Result = result
	r.mu.Unlock()
	r.add("done")
}

// With returns the recorded events starting with prefix
func (r *Recorder) With(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.Events {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}
