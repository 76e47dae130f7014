package bootstrap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/kafkaboot/brokerconf"
	"github.com/kbukum/kafkaboot/logger"
)

const masked = "******"

// secretMarkers flag configuration keys whose values are never logged.
var secretMarkers = []string{"PASSWORD", "SECRET", "TOKEN", "CREDENTIAL", "JAAS"}

// ValueInfo describes one resolved configuration value.
type ValueInfo struct {
	Key    string
	Value  string
	Source string // "env", "discovered", "default" or "derived"
	Used   bool   // referenced by the template
}

// Summary tracks what a bootstrap run resolved.
type Summary struct {
	runID    string
	strategy string
	duration time.Duration
	values   []ValueInfo
}

// NewSummary creates a summary for one run.
func NewSummary(runID, strategy string) *Summary {
	return &Summary{
		runID:    runID,
		strategy: strategy,
		values:   make([]ValueInfo, 0),
	}
}

// SetDuration records how long preparation took.
func (s *Summary) SetDuration(d time.Duration) {
	s.duration = d
}

// Track records every value of res in sorted key order. Only keys present in
// the template or produced by discovery are kept; the rest of the process
// environment is noise.
func (s *Summary) Track(res *Result, env brokerconf.Map, placeholders []string) {
	used := make(map[string]bool, len(placeholders))
	for _, k := range placeholders {
		used[k] = true
	}
	defaults := brokerconf.Defaults()

	for _, key := range res.Config.Keys() {
		_, discovered := res.Discovered[key]
		if !used[key] && !discovered {
			continue
		}
		s.values = append(s.values, ValueInfo{
			Key:    key,
			Value:  maskValue(key, res.Config[key]),
			Source: source(key, res, env, defaults),
			Used:   used[key],
		})
	}
}

// Values returns the tracked values.
func (s *Summary) Values() []ValueInfo {
	return s.values
}

// Log writes the summary at debug level, one line per value.
func (s *Summary) Log(log *logger.Logger) {
	log.Debug("configuration resolved", logger.Fields(
		logger.FieldStrategy, s.strategy,
		logger.FieldDuration, s.duration.Milliseconds(),
		"values", len(s.values),
	))
	for _, v := range s.values {
		log.Debug("config value", logger.Fields(
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
			"used", v.Used,
		))
	}
}

// Display prints the summary as a tree.
func (s *Summary) Display(w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 run %s (strategy: %s) prepared in %.2fs\n\n", s.runID, s.strategy, s.duration.Seconds())

	if len(s.values) == 0 {
		fmt.Fprintf(w, "   └── No values resolved\n\n")
		return
	}

	fmt.Fprintf(w, "📦 Configuration\n")
	for i, v := range s.values {
		prefix := "├──"
		if i == len(s.values)-1 {
			prefix = "└──"
		}
		marker := ""
		if !v.Used {
			marker = " (unused)"
		}
		fmt.Fprintf(w, "   %s %s %s=%s%s\n", prefix, sourceIcon(v.Source), v.Key, v.Value, marker)
	}
	fmt.Fprintf(w, "\n")
}

func source(key string, res *Result, env, defaults brokerconf.Map) string {
	if env[key] != "" {
		return "env"
	}
	if _, ok := res.Discovered[key]; ok {
		return "discovered"
	}
	if _, ok := defaults[key]; ok {
		return "default"
	}
	return "derived"
}

func maskValue(key, value string) string {
	upper := strings.ToUpper(key)
	for _, m := range secretMarkers {
		if strings.Contains(upper, m) && value != "" {
			return masked
		}
	}
	return value
}

func sourceIcon(source string) string {
	switch source {
	case "discovered":
		return "🔍"
	case "default":
		return "⚙️"
	case "derived":
		return "🔗"
	default:
		return "🌐"
	}
}
