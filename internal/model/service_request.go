package model

import "time"

type RequestType string

const (
	RequestGeneral    RequestType = "general"
	RequestWaiterCall RequestType = "waiter_call"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestResolved RequestStatus = "resolved"
)

// DefaultRequestMessage is used when a customer sends no message.
const DefaultRequestMessage = "Assistance required"

// ServiceRequest is a waiter call. It moves pending -> resolved once.
type ServiceRequest struct {
	ID          string        `json:"id"`
	TableNumber int           `json:"tableNumber"`
	Message     string        `json:"message"`
	Type        RequestType   `json:"type"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}
