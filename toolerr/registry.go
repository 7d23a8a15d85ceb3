package toolerr

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RecoveryRegistry stores known failure modes and recovery hints per tool.
// The registry is keyed tool -> errorCode -> []RecoveryHint.
type RecoveryRegistry struct {
	mu       sync.RWMutex
	registry map[string]map[string][]RecoveryHint
}

// globalRegistry backs Register, GetHints and EnrichError. Defaults for the
// built-in workflow tools are registered in defaults.go.
var globalRegistry = &RecoveryRegistry{
	registry: make(map[string]map[string][]RecoveryHint),
}

// Register adds recovery hints for a specific tool's error code, replacing
// any hints already registered for the same pair.
//
// Example:
//
//	Register("webapp_deploy", ErrCodeBinaryNotFound,
//	    RecoveryHint{
//	        Strategy: StrategyInstall,
//	        Reason:   "install the Azure CLI and make sure az is on PATH",
//	        Priority: 1,
//	    },
//	)
func Register(tool, errorCode string, hints ...RecoveryHint) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if globalRegistry.registry[tool] == nil {
		globalRegistry.registry[tool] = make(map[string][]RecoveryHint)
	}
	globalRegistry.registry[tool][errorCode] = hints
}

// GetHints retrieves recovery hints for a specific tool's error code.
// Returns nil if no hints are registered for the given pair.
func GetHints(tool, errorCode string) []RecoveryHint {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	if toolHints, ok := globalRegistry.registry[tool]; ok {
		if hints, ok := toolHints[errorCode]; ok {
			return hints
		}
	}
	return nil
}

// EnrichError sets a default class from the error code when none is set and
// appends any hints registered for the error's tool and code.
// Returns the same error instance, or nil if err is nil.
func EnrichError(err *Error) *Error {
	if err == nil {
		return nil
	}

	if err.Class == "" {
		err.Class = DefaultClassForCode(err.Code)
	}

	if hints := GetHints(err.Tool, err.Code); len(hints) > 0 {
		err.Hints = append(err.Hints, hints...)
	}

	return err
}

// FormatHints renders hints as "hint: ..." lines ordered by priority.
// It returns "" when there is nothing to show.
func FormatHints(hints []RecoveryHint) string {
	if len(hints) == 0 {
		return ""
	}
	sorted := make([]RecoveryHint, len(hints))
	copy(sorted, hints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	var b strings.Builder
	for i, h := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "hint: %s", h.Reason)
	}
	return b.String()
}
