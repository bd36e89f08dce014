package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// StudentID records the student identifier under the key "student_id".
func StudentID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("student_id", id)
}

// EventID records the event identifier under the key "event_id".
func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

// Recipient records the recipient address or identifier under the key "recipient".
func Recipient(v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String("recipient", v)
}

// Category records a notification category under the key "category".
func Category(v any) slog.Attr {
	return slog.Any("category", v)
}

// TaskID records the queue task identifier under the key "task_id".
func TaskID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("task_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
