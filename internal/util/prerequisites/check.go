// Package prerequisites checks that the system tools a command shells out to
// are present before any state is changed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a system tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string
}

var lookPath = exec.LookPath

// AccountTools are needed to create the cluster admin account.
func AccountTools() []Tool {
	return []Tool{
		{Name: "getent", Required: true, Description: "Looks up existing users and groups"},
		{Name: "groupadd", Required: true, Description: "Creates the admin group"},
		{Name: "useradd", Required: true, Description: "Creates the admin user"},
	}
}

// EgoTools are needed by cleanup, autostart and the HostFactory restart.
// They come with the Symphony installation, so the profile must be sourced.
func EgoTools() []Tool {
	return []Tool{
		{Name: "egosh", Required: true, Description: "EGO shell for resource and service control"},
		{Name: "soamview", Required: false, Description: "Lists applications and sessions for autostart"},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}
