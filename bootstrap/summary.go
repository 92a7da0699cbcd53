package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/wulawulu/tdd-di/di"
	"github.com/wulawulu/tdd-di/observability"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	contextID       string
	bindings        []string
	health          *observability.ServiceHealth
	out             io.Writer
}

// NewSummary creates a summary that displays to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         out,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackContext records the id and bound keys of a frozen context.
func (s *Summary) TrackContext(c *di.Context) {
	if c == nil {
		return
	}
	s.contextID = c.ID()
	s.bindings = s.bindings[:0]
	for _, k := range c.Keys() {
		s.bindings = append(s.bindings, k.String())
	}
}

// TrackHealth records the health shown in the summary.
func (s *Summary) TrackHealth(h *observability.ServiceHealth) {
	s.health = h
}

// Display writes the summary to its output.
func (s *Summary) Display() {
	s.Render(s.out)
}

// Render writes the summary to w.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	fmt.Fprintf(w, "📦 Container")
	if s.contextID != "" {
		fmt.Fprintf(w, " (%s)", s.contextID)
	}
	fmt.Fprintf(w, "\n")
	if len(s.bindings) == 0 {
		fmt.Fprintf(w, "   └── No components bound\n")
	}
	for i, b := range s.bindings {
		fmt.Fprintf(w, "   %s 🔗 %s\n", treePrefix(i, len(s.bindings)), b)
	}

	if s.health != nil && len(s.health.Components) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range s.health.Components {
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" — %s", h.Message)
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n",
				treePrefix(i, len(s.health.Components)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
		if s.health.Status == observability.HealthStatusUp {
			fmt.Fprintf(w, "\n✅ All components healthy (%d)\n", len(s.health.Components))
		} else {
			fmt.Fprintf(w, "\n⚠️  Service is %s\n", s.health.Status)
		}
	}

	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
