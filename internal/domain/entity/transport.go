package entity

import "time"

// Transport vehículo opcional asociado a un traslado.
type Transport struct {
	ID            string
	VehicleNumber string
	DriverName    string
	IsActive      bool
	CreatedAt     time.Time
}
