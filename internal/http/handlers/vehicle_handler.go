// README: Vehicle handlers: owner-scoped create and listing.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waypool/internal/http/middleware"
	"waypool/internal/modules/vehicle"
)

type VehicleHandler struct {
	vehicles *vehicle.Service
}

func NewVehicleHandler(vehicles *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

type createVehicleReq struct {
	Model       string `json:"model"`
	PlateNumber string `json:"plate_number"`
	Color       string `json:"color"`
	Capacity    int    `json:"capacity"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req createVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.vehicles.Create(c.Request.Context(), vehicle.CreateCommand{
		OwnerID:     middleware.UID(c),
		Model:       req.Model,
		PlateNumber: req.PlateNumber,
		Color:       req.Color,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicleDTO{
		ID:          string(v.ID),
		Model:       v.Model,
		PlateNumber: v.PlateNumber,
		Color:       v.Color,
		Capacity:    v.Capacity,
	})
}

func (h *VehicleHandler) ListMine(c *gin.Context) {
	vehicles, err := h.vehicles.ListByOwner(c.Request.Context(), middleware.UID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]vehicleDTO, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleDTO{
			ID:          string(v.ID),
			Model:       v.Model,
			PlateNumber: v.PlateNumber,
			Color:       v.Color,
			Capacity:    v.Capacity,
		}
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": out})
}
