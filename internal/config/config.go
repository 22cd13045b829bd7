// Package config parses and validates the daemon's configuration file:
// four directives, in order, specifying the router's own identifier, the
// ports it listens on, its directly reachable neighbors, and the three
// timer periods (spec.md §6.2).
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ripd/internal/clock"
	"ripd/internal/rib"
)

// Error reports a missing directive, an out-of-range value, or a broken
// timer ratio. All such failures are fatal at startup (spec.md §7).
type Error struct {
	Reason string
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s", e.Reason) }

func fail(format string, args ...interface{}) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Config is the validated, parsed form of the configuration file.
type Config struct {
	RouterID   rib.RouterID
	InputPorts []int
	Neighbors  []rib.Neighbor
	Timers     clock.Periods
}

const (
	minRouterID = 1
	maxRouterID = 64000
	minPort     = 1024
	maxPort     = 64000
)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fail("cannot open %q: %v", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Config, error) {
	lines, err := directiveLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) < 4 {
		return nil, fail("expected 4 directives (router-id, input-ports, outputs, timers), got %d", len(lines))
	}

	routerID, err := parseRouterID(lines[0])
	if err != nil {
		return nil, err
	}
	inputPorts, err := parseInputPorts(lines[1])
	if err != nil {
		return nil, err
	}
	neighbors, err := parseOutputs(lines[2])
	if err != nil {
		return nil, err
	}
	timers, err := parseTimers(lines[3])
	if err != nil {
		return nil, err
	}

	return &Config{
		RouterID:   routerID,
		InputPorts: inputPorts,
		Neighbors:  neighbors,
		Timers:     timers,
	}, nil
}

// directiveLines returns every non-blank line of the file, trimmed of
// surrounding whitespace, in file order. Splitting a line into keyword and
// arguments (and stripping commas) is done later by fields.
func directiveLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fail("reading config: %v", err)
	}
	return lines, nil
}

func fields(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ",", " "))
}

func parseRouterID(line string) (rib.RouterID, error) {
	f := fields(line)
	if len(f) != 2 || f[0] != "router-id" {
		return 0, fail("expected %q directive, got %q", "router-id <id>", line)
	}
	id, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, fail("router-id: not a number: %q", f[1])
	}
	if id < minRouterID || id > maxRouterID {
		return 0, fail("router-id %d out of range [%d, %d]", id, minRouterID, maxRouterID)
	}
	return rib.RouterID(id), nil
}

func parseInputPorts(line string) ([]int, error) {
	f := fields(line)
	if len(f) < 2 || f[0] != "input-ports" {
		return nil, fail("expected %q directive, got %q", "input-ports <p1>, <p2>, ...", line)
	}
	var ports []int
	for _, tok := range f[1:] {
		port, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fail("input-ports: not a number: %q", tok)
		}
		if port < minPort || port > maxPort {
			return nil, fail("input port %d out of range [%d, %d]", port, minPort, maxPort)
		}
		ports = append(ports, port)
	}
	if len(ports) == 0 {
		return nil, fail("input-ports: at least one port is required")
	}
	return ports, nil
}

func parseOutputs(line string) ([]rib.Neighbor, error) {
	f := fields(line)
	if len(f) < 2 || f[0] != "outputs" {
		return nil, fail("expected %q directive, got %q", "outputs <port>-<metric>-<neighbor_id>, ...", line)
	}
	var neighbors []rib.Neighbor
	for _, tok := range f[1:] {
		parts := strings.Split(tok, "-")
		if len(parts) != 3 {
			return nil, fail("outputs: malformed entry %q, want <port>-<metric>-<neighbor_id>", tok)
		}
		port, err1 := strconv.Atoi(parts[0])
		metric, err2 := strconv.Atoi(parts[1])
		neighborID, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fail("outputs: malformed entry %q", tok)
		}
		if port < minPort || port > maxPort {
			return nil, fail("output port %d out of range [%d, %d]", port, minPort, maxPort)
		}
		if metric < 0 {
			return nil, fail("link metric %d must be non-negative", metric)
		}
		if neighborID < minRouterID || neighborID > maxRouterID {
			return nil, fail("neighbor id %d out of range [%d, %d]", neighborID, minRouterID, maxRouterID)
		}
		neighbors = append(neighbors, rib.Neighbor{
			ID:           rib.RouterID(neighborID),
			OutboundPort: port,
			LinkMetric:   metric,
		})
	}
	return neighbors, nil
}

func parseTimers(line string) (clock.Periods, error) {
	f := fields(line)
	if len(f) != 4 || f[0] != "timers" {
		return clock.Periods{}, fail("expected %q directive, got %q", "timers <scheduled>, <timeout>, <garbage>", line)
	}
	scheduled, err1 := strconv.Atoi(f[1])
	timeout, err2 := strconv.Atoi(f[2])
	garbage, err3 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return clock.Periods{}, fail("timers: expected three numbers, got %q", line)
	}
	if scheduled <= 0 {
		return clock.Periods{}, fail("scheduled timer must be positive, got %d", scheduled)
	}
	if timeout != 6*scheduled {
		return clock.Periods{}, fail("timeout (%d) must equal 6x scheduled (%d)", timeout, scheduled)
	}
	if garbage != 4*scheduled {
		return clock.Periods{}, fail("garbage (%d) must equal 4x scheduled (%d)", garbage, scheduled)
	}
	return clock.Periods{Scheduled: scheduled, Timeout: timeout, Garbage: garbage}, nil
}
