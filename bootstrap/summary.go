package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/cognitokit/component"
)

// Summary prints what a binary started with: components, HTTP routes and a
// live health check.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the summary to w. A nil registry prints only the header.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	if w == nil {
		return
	}
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())
	if registry == nil {
		return
	}

	descs := registry.Describe()
	if len(descs) == 0 {
		fmt.Fprintf(w, "  └── no components registered\n")
	} else {
		fmt.Fprintf(w, "\nComponents\n")
		for i, d := range descs {
			line := fmt.Sprintf("[%s] %s", d.Type, d.Name)
			if d.Details != "" {
				line += ": " + d.Details
			}
			fmt.Fprintf(w, "  %s %s\n", treePrefix(i, len(descs)), line)
		}
	}

	var routes []component.Route
	for _, c := range registry.All() {
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "  %s %-6s %s\n", treePrefix(i, len(routes)), r.Method, r.Path)
		}
	}

	healths := registry.HealthAll(context.Background())
	if len(healths) > 0 {
		fmt.Fprintf(w, "\nHealth\n")
		for i, h := range healths {
			line := fmt.Sprintf("%s %s: %s", healthMark(h.Status), h.Name, strings.ToLower(string(h.Status)))
			if h.Message != "" {
				line += " (" + h.Message + ")"
			}
			fmt.Fprintf(w, "  %s %s\n", treePrefix(i, len(healths)), line)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✓"
	case component.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}
