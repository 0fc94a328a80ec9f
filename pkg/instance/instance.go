package instance

import "github.com/kisanmandi/mandi-backend/pkg/env"

const defaultID = "local"

// GetID identifies this process in logs and lock ownership. Containers get
// HOSTNAME for free; MANDI_INSTANCE_ID overrides it.
func GetID() string {
	return env.Get(defaultID, "MANDI_INSTANCE_ID", "HOSTNAME")
}
