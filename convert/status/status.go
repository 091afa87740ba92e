// Package status defines the closed set of TCB statuses found in Intel's
// TCB Info and QE Identity collateral.
package status

import "fmt"

// TCBStatus is the status of a TCB level as reported by Intel's PCS.
type TCBStatus string

const (
	// UpToDate means all TCB levels are up to date.
	UpToDate TCBStatus = "UpToDate"

	// OutOfDate means at least one TCB level is outdated.
	OutOfDate TCBStatus = "OutOfDate"

	// Revoked means the TCB level has been revoked by Intel.
	Revoked TCBStatus = "Revoked"

	// ConfigurationNeeded means the platform needs additional configuration.
	ConfigurationNeeded TCBStatus = "ConfigurationNeeded"

	// OutOfDateConfigurationNeeded means the TCB level is outdated and the platform needs additional configuration.
	OutOfDateConfigurationNeeded TCBStatus = "OutOfDateConfigurationNeeded"

	// SWHardeningNeeded means the platform needs software mitigations.
	SWHardeningNeeded TCBStatus = "SWHardeningNeeded"

	// ConfigurationAndSWHardeningNeeded means the platform needs additional configuration and software mitigations.
	ConfigurationAndSWHardeningNeeded TCBStatus = "ConfigurationAndSWHardeningNeeded"
)

// UnknownTCBStatusError is returned when a status string matches none of the defined TCB statuses.
type UnknownTCBStatusError struct {
	Value string
}

func (e *UnknownTCBStatusError) Error() string {
	return fmt.Sprintf("unknown TCB status %q", e.Value)
}

var statuses = map[string]TCBStatus{
	string(UpToDate):                          UpToDate,
	string(OutOfDate):                         OutOfDate,
	string(Revoked):                           Revoked,
	string(ConfigurationNeeded):               ConfigurationNeeded,
	string(OutOfDateConfigurationNeeded):      OutOfDateConfigurationNeeded,
	string(SWHardeningNeeded):                 SWHardeningNeeded,
	string(ConfigurationAndSWHardeningNeeded): ConfigurationAndSWHardeningNeeded,
}

// Parse maps a collateral status string to its TCBStatus.
// The mapping is closed: strings outside the set above return an UnknownTCBStatusError.
func Parse(value string) (TCBStatus, error) {
	tcbStatus, ok := statuses[value]
	if !ok {
		return "", &UnknownTCBStatusError{Value: value}
	}
	return tcbStatus, nil
}
