package instance

import "github.com/angelmondragon/meaw-storefront/pkg/env"

// ID identifies this process in logs. MEAW_INSTANCE_ID wins, then the platform's DYNO and HOSTNAME.
func ID() string {
	if id := env.First("MEAW_INSTANCE_ID", "DYNO", "HOSTNAME"); id != "" {
		return id
	}
	return "local"
}
