package telemetry

import "github.com/denisbrodbeck/machineid"

var distinctId string

// getDistinctId derives a stable anonymous identifier from the machine id.
// The id is hashed with the app name so it cannot be correlated with other
// software using the same library.
func getDistinctId() string {
	id, err := machineid.ProtectedID("awxmon")
	if err != nil {
		return "anonymous"
	}
	return id
}
