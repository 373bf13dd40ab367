package utils

import (
	"github.com/denisbrodbeck/machineid"
)

// HWID is a hashed, app-scoped machine identifier. Falls back to "unknown"
// when the platform provides no machine id (containers, some BSDs).
var HWID = getHWID()

func getHWID() string {
	id, err := machineid.ProtectedID("watchdeck")
	if err != nil {
		return "unknown"
	}
	return id
}
