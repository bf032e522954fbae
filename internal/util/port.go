package util

import (
	"fmt"
	"strconv"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// ValidatePort checks if port is in valid range (1-65535).
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("port %d out of range (must be %d-%d)", port, MinPort, MaxPort)
	}
	return nil
}

// ValidatePortString checks that s is an all-digit string naming a valid
// port. Tunnel ports travel as strings because they are scraped from
// command lines and table cells, so this is the shared gate before one is
// handed to the external binary.
func ValidatePortString(s string) error {
	if s == "" {
		return fmt.Errorf("port is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be numeric: %q", s)
	}
	return ValidatePort(n)
}
