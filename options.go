package dfsenv

type options struct {
	logger   *Logger
	threadID ThreadIDFunc
}

// Option configures Env construction.
type Option func(*options)

// WithLogger configures the logger used for the adapter's own diagnostic
// traces. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithThreadIDFunc configures the thread-id accessor handed to log sinks
// created through Env.NewLogSink.
func WithThreadIDFunc(tid ThreadIDFunc) Option {
	return func(o *options) {
		o.threadID = tid
	}
}
