package models

import "time"

// Service request types
const (
	RequestTypeRoadside = "roadside"
	RequestTypeCharging = "charging"
)

// Service request statuses. Completed and canceled are terminal: no
// further status transition, though notes and messages may still append.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Message senders
const (
	SenderAdmin = "admin"
	SenderUser  = "user"
)

// Location describes where a service request takes place.
type Location struct {
	Latitude                   float64      `json:"latitude"`
	Longitude                  float64      `json:"longitude"`
	Address                    string       `json:"address,omitempty"`
	CurrentLocationCoordinates *Coordinates `json:"current_location_coordinates,omitempty"`
}

// Coordinates is a raw GPS reading.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// VehicleInfo describes the customer's vehicle.
type VehicleInfo struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Year         string `json:"year,omitempty"`
	Color        string `json:"color,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

// SelectedService is one catalog entry chosen on a request, with the
// price locked in at submission time.
type SelectedService struct {
	ServiceID    string  `json:"service_id"`
	ServiceName  string  `json:"service_name"`
	Price        float64 `json:"price"`
	IsAfterHours bool    `json:"is_after_hours"`
}

// Message is one entry in a request's conversation thread. Messages are
// immutable once created and only ever appended.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"` // admin or user
	Timestamp time.Time `json:"timestamp"`
}

// AcceptedBy identifies the staff member who accepted a job.
type AcceptedBy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// JobAcceptanceLog records a staff member accepting a job, capturing
// their location at that moment. Logs are prepended, newest first.
type JobAcceptanceLog struct {
	ID          string      `json:"id"`
	AcceptedAt  time.Time   `json:"accepted_at"`
	AcceptedBy  *AcceptedBy `json:"accepted_by,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Platform    string      `json:"platform"`
}

// ServiceRequest is a customer's intake request, either global or owned
// by a tenant.
type ServiceRequest struct {
	ID               string             `json:"id"`
	TenantID         string             `json:"tenant_id,omitempty"`
	Type             string             `json:"type"` // roadside or charging
	Name             string             `json:"name"`
	Phone            string             `json:"phone"`
	Email            string             `json:"email"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Location         Location           `json:"location"`
	VehicleInfo      *VehicleInfo       `json:"vehicle_info,omitempty"`
	PreferredDate    string             `json:"preferred_date,omitempty"`
	PreferredTime    string             `json:"preferred_time,omitempty"`
	HasSpareTire     bool               `json:"has_spare_tire"`
	SelectedServices []SelectedService  `json:"selected_services,omitempty"`
	TotalAmount      *float64           `json:"total_amount,omitempty"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	AdminNote        string             `json:"admin_note,omitempty"`
	Messages         []Message          `json:"messages,omitempty"`
	CancelReason     string             `json:"cancel_reason,omitempty"`
	DeleteReason     string             `json:"delete_reason,omitempty"`
	AssignedStaff    []string           `json:"assigned_staff,omitempty"`
	Photos           []string           `json:"photos,omitempty"` // data URIs, or s3: refs when offloaded
	AcceptanceLogs   []JobAcceptanceLog `json:"acceptance_logs,omitempty"`
}

// IsTerminal reports whether the request has reached a terminal status.
func (r *ServiceRequest) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCanceled
}

// ArchivedRequest is the append/update mirror of a live request. Every
// mutation to a live request rewrites its mirror; ArchivedAt is set once,
// LastUpdatedAt on every mirror.
type ArchivedRequest struct {
	ServiceRequest
	ArchivedAt    time.Time `json:"archived_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
