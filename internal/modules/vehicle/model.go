// README: Vehicle record owned by a driver.
package vehicle

import "waypool/internal/types"

// Vehicle is reference data attached to rides. The booking core reads
// it for display only and never mutates it after creation.
type Vehicle struct {
	ID          types.ID
	OwnerID     types.ID
	Model       string
	PlateNumber string
	Color       string
	Capacity    int
}
