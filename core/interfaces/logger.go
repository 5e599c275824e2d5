// ABOUTME: Structured logger contract implemented by the logrus and zap backends
// ABOUTME: NopLogger is the fallback when a component gets no logger

package interfaces

// Logger writes leveled messages with structured fields, e.g.
//
//	logger.Info("Item collected", map[string]interface{}{
//		"domain": "example.com",
//		"total":  3,
//	})
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards every entry. Components fall back to it when no logger is wired.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
