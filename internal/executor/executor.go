// Package executor orchestrates a tool call: validate against the catalog,
// gate on the permission mode, capture a pre-mutation snapshot, confirm
// dangerous operations, run the tool, and record usage. Failures are always
// returned as structured results; nothing escapes as a panic.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"warden/internal/approval"
	"warden/internal/logging"
	"warden/internal/permission"
	"warden/internal/snapshot"
	"warden/internal/tool"
)

// Executor runs tool calls one at a time; a call's result, including its
// snapshot, is durably recorded before the next call starts.
type Executor struct {
	catalog   *tool.Catalog
	perms     *permission.Controller
	snapshots *snapshot.Manager
	approver  approval.Approver
	logger    logging.Logger
	metrics   *Metrics
	workDir   string

	mu    sync.Mutex
	stats usageLedger
}

// Options configures an Executor.
type Options struct {
	WorkDir  string
	Approver approval.Approver
	Logger   logging.Logger
	// Metrics defaults to the process-wide collectors when nil.
	Metrics *Metrics
}

// New wires an executor. The approver defaults to auto-approve when nil.
func New(catalog *tool.Catalog, perms *permission.Controller, snapshots *snapshot.Manager, opts Options) *Executor {
	approver := opts.Approver
	if approver == nil {
		approver = approval.NewNoOpApprover()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = defaultMetrics()
	}
	return &Executor{
		catalog:   catalog,
		perms:     perms,
		snapshots: snapshots,
		approver:  approver,
		logger:    logging.OrNop(opts.Logger),
		metrics:   metrics,
		workDir:   opts.WorkDir,
		stats:     usageLedger{perTool: make(map[string]int)},
	}
}

// Execute processes one tool call end to end and always returns a result;
// errors from the underlying operation are converted, never propagated.
func (e *Executor) Execute(ctx context.Context, req tool.CallRequest) *tool.CallResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := e.execute(ctx, req)
	e.stats.record(req.Name, result.Success)
	e.metrics.observeCall(req.Name, result.Success)
	return result
}

func (e *Executor) execute(ctx context.Context, req tool.CallRequest) *tool.CallResult {
	if err := e.catalog.Validate(req.Name, req.Arguments); err != nil {
		e.logger.Debug("Rejected call to %s: %v", req.Name, err)
		return e.failure("", err.Error())
	}
	def, err := e.catalog.Get(req.Name)
	if err != nil {
		return e.failure("", err.Error())
	}

	if !e.perms.ShouldExecuteTool(req.Name) {
		e.logger.Info("Blocked %s in %s mode", req.Name, e.perms.Mode())
		return e.failure("", fmt.Sprintf("Blocked in plan mode: %s", req.Name))
	}

	snapshotID := ""
	if def.NeedsSnapshot {
		snap, err := e.snapshots.Create(ctx, snapshot.CreateRequest{
			Reason:     fmt.Sprintf("Before %s", req.Name),
			SessionID:  req.SessionID,
			Paths:      def.TargetPaths(req.Arguments),
			WorkingDir: e.workDir,
			ToolUsed:   req.Name,
		})
		if err != nil {
			// Without a recoverable capture the mutation must not run.
			e.logger.Error("Snapshot before %s failed: %v", req.Name, err)
			return e.failure("", fmt.Sprintf("snapshot failed: %v", err))
		}
		snapshotID = snap.ID
		e.metrics.observeSnapshot()
	}

	if def.Dangerous && !e.perms.ShouldAutoApprove() {
		resp, err := e.approver.RequestApproval(ctx, &approval.Request{
			Tool:      req.Name,
			Operation: def.Description,
			FilePath:  firstTarget(def, req.Arguments),
		})
		if err != nil {
			return e.failure(snapshotID, fmt.Sprintf("approval failed: %v", err))
		}
		if !resp.Approved {
			// Denial is handled exactly like a validation failure.
			e.logger.Info("User denied %s: %s", req.Name, resp.Message)
			return e.failure(snapshotID, fmt.Sprintf("Denied: %s", resp.Message))
		}
	}

	result := e.run(ctx, req)
	if result.Err != nil {
		return e.failure(snapshotID, result.Err.Error())
	}

	return &tool.CallResult{
		Success:     true,
		Content:     result.Content,
		Metadata:    result.Metadata,
		SnapshotID:  snapshotID,
		CompletedAt: time.Now(),
	}
}

// run invokes the tool with panic recovery so a misbehaving operation
// surfaces as an execution failure instead of crashing the process.
func (e *Executor) run(ctx context.Context, req tool.CallRequest) (result *tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Tool %s panicked: %v", req.Name, r)
			result = &tool.Result{
				CallID: req.ID,
				Err:    fmt.Errorf("tool execution panicked: %v", r),
			}
		}
	}()

	runner, err := e.catalog.Runner(req.Name)
	if err != nil {
		return &tool.Result{CallID: req.ID, Err: err}
	}
	result, err = runner.Execute(ctx, req)
	if err != nil {
		return &tool.Result{CallID: req.ID, Err: err}
	}
	if result == nil {
		return &tool.Result{CallID: req.ID, Err: fmt.Errorf("tool returned nil result")}
	}
	return result
}

func (e *Executor) failure(snapshotID, message string) *tool.CallResult {
	return &tool.CallResult{
		Success:     false,
		Error:       message,
		SnapshotID:  snapshotID,
		CompletedAt: time.Now(),
	}
}

func firstTarget(def tool.Definition, args map[string]any) string {
	if targets := def.TargetPaths(args); len(targets) > 0 {
		return targets[0]
	}
	if command, ok := args["command"].(string); ok {
		return command
	}
	return ""
}

// UsageStats summarizes the running call ledger.
type UsageStats struct {
	TotalCalls  int            `json:"total_calls"`
	SuccessRate float64        `json:"success_rate"`
	ToolUsage   map[string]int `json:"tool_usage"`
}

type usageLedger struct {
	total     int
	succeeded int
	perTool   map[string]int
}

func (l *usageLedger) record(toolName string, success bool) {
	l.total++
	if success {
		l.succeeded++
	}
	l.perTool[toolName]++
}

// UsageStats returns a copy of the running ledger.
func (e *Executor) UsageStats() UsageStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	usage := make(map[string]int, len(e.stats.perTool))
	for name, count := range e.stats.perTool {
		usage[name] = count
	}
	rate := 0.0
	if e.stats.total > 0 {
		rate = float64(e.stats.succeeded) / float64(e.stats.total)
	}
	return UsageStats{
		TotalCalls:  e.stats.total,
		SuccessRate: rate,
		ToolUsage:   usage,
	}
}
