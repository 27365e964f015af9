package tracecomp

// Hooks receive run notifications. They are called on the goroutine that
// executes Run and must not block for long. Nil hooks are skipped.
//
// Per run: OnStarted once, OnProgress with non-decreasing percentages, then
// exactly one of OnCompleted, OnFailed or OnCancelled.
type Hooks struct {
	OnStarted   func()
	OnProgress  func(percent int)
	OnCompleted func(result Result)
	OnFailed    func(err error)
	OnCancelled func()
}

func (h Hooks) started() {
	if h.OnStarted != nil {
		h.OnStarted()
	}
}

func (h Hooks) progress(percent int) {
	if h.OnProgress != nil {
		h.OnProgress(percent)
	}
}

func (h Hooks) completed(result Result) {
	if h.OnCompleted != nil {
		h.OnCompleted(result)
	}
}

func (h Hooks) failed(err error) {
	if h.OnFailed != nil {
		h.OnFailed(err)
	}
}

func (h Hooks) cancelled() {
	if h.OnCancelled != nil {
		h.OnCancelled()
	}
}
