package comm

import "sync"

// HookPos marks a site where a transport invokes its hooks.
type HookPos struct {
	Name string
}

// Hook positions of a transport.
var (
	// HookPosMsgSend triggers when a message is handed to the transport.
	HookPosMsgSend = &HookPos{Name: "Msg Send"}

	// HookPosMsgRecv triggers when a receive call takes a message.
	HookPosMsgRecv = &HookPos{Name: "Msg Recv"}

	// HookPosCollectiveStart triggers when a rank enters a collective call.
	HookPosCollectiveStart = &HookPos{Name: "Collective Start"}

	// HookPosCollectiveEnd triggers when a rank leaves a collective call.
	HookPosCollectiveEnd = &HookPos{Name: "Collective End"}

	// HookPosAbort triggers once when the run is aborted.
	HookPosAbort = &HookPos{Name: "Abort"}
)

// Collective describes a collective call for the collective hook positions.
type Collective struct {
	Name    string
	Context uint64
	Rank    int
	Size    int
	Op      Op
	Len     int
}

// HookCtx is passed to hooks. Item is a *Msg for the message positions, a
// Collective for the collective positions, and the abort code for
// HookPosAbort.
type HookCtx struct {
	Domain any
	Pos    *HookPos
	Item   any
}

// Hook is a short piece of program that a transport invokes.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable is implemented by transports that accept hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase keeps a hook list that many ranks may invoke concurrently.
type HookableBase struct {
	lock  sync.RWMutex
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, existing := range h.hooks {
		if existing == hook {
			panic("duplicated hook")
		}
	}

	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.hooks)
}

// InvokeHook triggers the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.lock.RLock()
	hooks := h.hooks
	h.lock.RUnlock()

	for _, hook := range hooks {
		hook.Func(ctx)
	}
}
