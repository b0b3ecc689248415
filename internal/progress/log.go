package progress

import "log/slog"

// LogObserver writes progress as structured log records.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) Progress(current, total int, label string) {
	if total > 0 {
		o.logger().Info("Run progress.", "step", current, "total", total, "status", label)
		return
	}
	o.logger().Info("Run progress.", "status", label)
}

func (o LogObserver) Finished(err error) {
	if err != nil {
		o.logger().Error("Run finished with errors.", "error", err)
		return
	}
	o.logger().Info("Run finished.")
}
