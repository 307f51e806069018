// Package permission decides whether a tool call may run in the current
// trust mode and whether it needs explicit confirmation.
package permission

import "sync"

// Mode is a user-controlled trust level for tool execution.
type Mode string

const (
	// ModeNormal allows execution; dangerous tools need confirmation.
	ModeNormal Mode = "normal"
	// ModeAutoAccept allows execution without any confirmation.
	ModeAutoAccept Mode = "auto-accept"
	// ModePlan is read-only: only allow-listed tools may run.
	ModePlan Mode = "plan"
)

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeAutoAccept, ModePlan:
		return true
	}
	return false
}

// readOnlyTools is the fixed allow-list for plan mode: tools that inspect
// state without modifying it.
var readOnlyTools = map[string]bool{
	"file_read":     true,
	"list_files":    true,
	"find":          true,
	"grep":          true,
	"git_status":    true,
	"git_diff":      true,
	"git_log":       true,
	"code_analyze":  true,
	"symbol_lookup": true,
}

// IsReadOnlyTool reports whether name is on the plan-mode allow-list.
func IsReadOnlyTool(name string) bool {
	return readOnlyTools[name]
}

// Controller holds the mode state for one session. It is constructed per
// process (or per session) and threaded explicitly through callers; nothing
// here is a package-level global. State resets to normal/non-verbose on
// construction and is never persisted.
type Controller struct {
	mu      sync.RWMutex
	mode    Mode
	verbose bool
}

// NewController returns a controller in normal mode with verbose off.
func NewController() *Controller {
	return &Controller{mode: ModeNormal}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode switches to the given mode. An invalid mode is a programming
// error and is ignored rather than recovered from.
func (c *Controller) SetMode(mode Mode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// CycleMode rotates normal -> auto-accept -> plan -> normal and returns the
// new mode.
func (c *Controller) CycleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.mode {
	case ModeNormal:
		c.mode = ModeAutoAccept
	case ModeAutoAccept:
		c.mode = ModePlan
	default:
		c.mode = ModeNormal
	}
	return c.mode
}

// ShouldExecuteTool reports whether name may run in the current mode.
func (c *Controller) ShouldExecuteTool(name string) bool {
	return ShouldExecuteIn(name, c.Mode())
}

// ShouldExecuteIn reports whether name may run in an explicit mode. Plan
// mode permits only the read-only allow-list; every other mode permits
// everything.
func ShouldExecuteIn(name string, mode Mode) bool {
	if mode == ModePlan {
		return readOnlyTools[name]
	}
	return true
}

// ShouldAutoApprove reports whether dangerous tools skip confirmation.
func (c *Controller) ShouldAutoApprove() bool {
	return c.Mode() == ModeAutoAccept
}

// ToggleVerbose flips the verbose flag and returns the new value. Verbose
// affects prompt augmentation in collaborators, never execution gating.
func (c *Controller) ToggleVerbose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbose = !c.verbose
	return c.verbose
}

// Verbose returns the verbose flag.
func (c *Controller) Verbose() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verbose
}
