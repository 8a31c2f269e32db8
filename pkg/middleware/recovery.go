package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
)

// RecoveryConfig holds recovery middleware configuration
type RecoveryConfig struct {
	Logger       Logger
	StackTrace   bool
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err interface{})
}

// Recovery creates panic recovery middleware
func Recovery(config *RecoveryConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = &RecoveryConfig{StackTrace: true}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					var stack string
					if config.StackTrace {
						stack = string(debug.Stack())
					}

					if config.Logger != nil {
						config.Logger.Error("panic recovered",
							"error", err,
							"path", r.URL.Path,
							"method", r.Method,
							"stack", stack,
						)
					}

					if config.ErrorHandler != nil {
						config.ErrorHandler(w, r, err)
						return
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"error": map[string]string{
							"code":    "INTERNAL_ERROR",
							"message": "An unexpected error occurred",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryWithLogger creates recovery middleware with a logger
func RecoveryWithLogger(logger Logger) func(http.Handler) http.Handler {
	return Recovery(&RecoveryConfig{
		Logger:     logger,
		StackTrace: true,
	})
}
