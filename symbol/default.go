package symbol

import "sync"

var (
	defaultMu      sync.Mutex
	defaultOptions Options
	defaultOnce    sync.Once
	defaultTable   *Table
)

// Configure sets the options of the process-wide table. It must be called
// before the first Symbol is created; afterwards it returns
// ErrAlreadyInitialized.
func Configure(opts Options) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultTable != nil {
		return ErrAlreadyInitialized
	}
	defaultOptions = opts
	return nil
}

// Default returns the process-wide table, creating it on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defaultTable = NewTable(defaultOptions)
		defaultMu.Unlock()
	})
	return defaultTable
}
