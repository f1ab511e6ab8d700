package models

const (
	SessionStatusSeated  = "seated"
	SessionStatusOrdered = "ordered"
	SessionStatusSettled = "settled"

	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
)
