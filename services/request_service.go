package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

// Reason kinds accepted by UpdateReason.
const (
	ReasonCancel = "cancel"
	ReasonDelete = "delete"
)

// RequestService owns the live and archived service-request collections.
// Every mutation to a live request is immediately mirrored into the
// archive; the archive is never independently authored, and live-only
// removals (Delete, ClearPastRequests) leave it untouched.
type RequestService struct {
	store    store.Store
	locks    *store.KeyLocker
	tenants  *TenantService
	notifier NotifierInterface
	log      zerolog.Logger
}

// NewRequestService creates the request lifecycle manager.
func NewRequestService(st store.Store, locks *store.KeyLocker, tenants *TenantService, notifier NotifierInterface, log zerolog.Logger) *RequestService {
	return &RequestService{store: st, locks: locks, tenants: tenants, notifier: notifier, log: log}
}

// CreateRequestInput is the customer intake payload. Selected services
// arrive as catalog entries and are priced at submission time.
type CreateRequestInput struct {
	Type          string
	Name          string
	Phone         string
	Email         string
	Title         string
	Description   string
	Location      models.Location
	VehicleInfo   *models.VehicleInfo
	PreferredDate string
	PreferredTime string
	HasSpareTire  bool
	Services      []models.CatalogEntry
}

// Create stores a new pending request and mirrors it into the archive.
// The returned position is the count of other pending requests at
// creation time, a customer-facing counter with no uniqueness guarantee.
func (s *RequestService) Create(ctx context.Context, tenantID string, input CreateRequestInput) (*models.ServiceRequest, int, error) {
	switch input.Type {
	case models.RequestTypeRoadside, models.RequestTypeCharging:
	default:
		return nil, 0, fmt.Errorf("unknown request type %q: %w", input.Type, models.ErrBadRequest)
	}
	if input.Name == "" || input.Phone == "" {
		return nil, 0, fmt.Errorf("name and phone are required: %w", models.ErrBadRequest)
	}

	var tenant *models.Tenant
	if tenantID != "" {
		var err error
		tenant, err = s.tenants.EnsureWritable(ctx, tenantID)
		if err != nil {
			return nil, 0, err
		}
	}

	now := time.Now()
	request := models.ServiceRequest{
		ID:            ksuid.New().String(),
		TenantID:      tenantID,
		Type:          input.Type,
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		VehicleInfo:   input.VehicleInfo,
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		HasSpareTire:  input.HasSpareTire,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}

	if len(input.Services) > 0 {
		selected := make([]models.SelectedService, 0, len(input.Services))
		for _, entry := range input.Services {
			selected = append(selected, models.SelectedService{
				ServiceID:    entry.ID,
				ServiceName:  entry.Name,
				Price:        ServicePrice(entry, now),
				IsAfterHours: IsAfterHours(now),
			})
		}
		total := RequestTotal(selected)
		request.SelectedServices = selected
		request.TotalAmount = &total
	}

	key := store.RequestsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, key, &requests); err != nil {
		return nil, 0, fmt.Errorf("load requests: %w", err)
	}

	if tenant != nil && len(requests) >= tenant.Features.MaxRequests {
		return nil, 0, fmt.Errorf("plan limit of %d requests reached: %w", tenant.Features.MaxRequests, models.ErrBadRequest)
	}

	// Point-in-time count, not an atomic reservation.
	position := 0
	for _, r := range requests {
		if r.Status == models.StatusPending {
			position++
		}
	}

	requests = append(requests, request)
	if err := s.store.Set(ctx, key, requests); err != nil {
		return nil, 0, fmt.Errorf("save requests: %w", err)
	}
	if err := s.mirror(ctx, tenantID, request); err != nil {
		return nil, 0, err
	}

	s.log.Info().Str("request_id", request.ID).Str("type", request.Type).Str("tenant_id", tenantID).Msg("request created")
	return &request, position, nil
}

// List returns the live requests in a scope, most recent first.
func (s *RequestService) List(ctx context.Context, caller models.Identity, tenantID string) ([]models.ServiceRequest, error) {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return nil, err
	}
	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, store.RequestsKey(tenantID), &requests); err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	return requests, nil
}

// ListArchived returns the archive mirror for a scope.
func (s *RequestService) ListArchived(ctx context.Context, caller models.Identity, tenantID string) ([]models.ArchivedRequest, error) {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return nil, err
	}
	var archived []models.ArchivedRequest
	if _, err := s.store.Get(ctx, store.ArchivedRequestsKey(tenantID), &archived); err != nil {
		return nil, fmt.Errorf("load archived requests: %w", err)
	}
	return archived, nil
}

// Get returns one live request by id.
func (s *RequestService) Get(ctx context.Context, caller models.Identity, tenantID, id string) (*models.ServiceRequest, error) {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return nil, err
	}
	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, store.RequestsKey(tenantID), &requests); err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i], nil
		}
	}
	return nil, fmt.Errorf("request %s: %w", id, models.ErrNotFound)
}

// UpdateStatus transitions a request's status. No transition table is
// enforced; concurrent updates to the same id are last-write-wins.
func (s *RequestService) UpdateStatus(ctx context.Context, caller models.Identity, tenantID, id, status string) (*models.ServiceRequest, error) {
	switch status {
	case models.StatusPending, models.StatusScheduled, models.StatusCompleted, models.StatusCanceled:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, models.ErrBadRequest)
	}
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.Status = status
		return nil
	})
}

// UpdateReason sets the cancellation or deletion reason. It never changes
// status itself; callers combine it with UpdateStatus.
func (s *RequestService) UpdateReason(ctx context.Context, caller models.Identity, tenantID, id, kind, reason string) (*models.ServiceRequest, error) {
	if kind != ReasonCancel && kind != ReasonDelete {
		return nil, fmt.Errorf("unknown reason kind %q: %w", kind, models.ErrBadRequest)
	}
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		if kind == ReasonCancel {
			r.CancelReason = reason
		} else {
			r.DeleteReason = reason
		}
		return nil
	})
}

// AddMessage appends a message to the request's thread. Messages are
// immutable and never removed; calling twice appends two entries. An
// admin message notifies every assigned staff member.
func (s *RequestService) AddMessage(ctx context.Context, caller models.Identity, tenantID, id, text, sender string) (*models.ServiceRequest, error) {
	if sender != models.SenderAdmin && sender != models.SenderUser {
		return nil, fmt.Errorf("unknown sender %q: %w", sender, models.ErrBadRequest)
	}
	if text == "" {
		return nil, fmt.Errorf("message text is required: %w", models.ErrBadRequest)
	}
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.Messages = append(r.Messages, models.Message{
			ID:        uuid.NewString(),
			Text:      text,
			Sender:    sender,
			Timestamp: time.Now(),
		})
		if sender == models.SenderAdmin {
			for _, staffID := range r.AssignedStaff {
				s.notifier.Notify(Notification{
					UserID:    staffID,
					Type:      "message",
					Title:     "New message on " + r.Title,
					Message:   text,
					RelatedID: r.ID,
				})
			}
		}
		return nil
	})
}

// AddPhoto appends a photo reference (data URI or offloaded key).
func (s *RequestService) AddPhoto(ctx context.Context, caller models.Identity, tenantID, id, photo string) (*models.ServiceRequest, error) {
	if photo == "" {
		return nil, fmt.Errorf("photo is required: %w", models.ErrBadRequest)
	}
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.Photos = append(r.Photos, photo)
		return nil
	})
}

// RemovePhoto removes the photo at the given index.
func (s *RequestService) RemovePhoto(ctx context.Context, caller models.Identity, tenantID, id string, index int) (*models.ServiceRequest, error) {
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		if index < 0 || index >= len(r.Photos) {
			return fmt.Errorf("photo index %d out of range: %w", index, models.ErrBadRequest)
		}
		r.Photos = append(r.Photos[:index], r.Photos[index+1:]...)
		return nil
	})
}

// UpdateNote sets the admin note on a request.
func (s *RequestService) UpdateNote(ctx context.Context, caller models.Identity, tenantID, id, note string) (*models.ServiceRequest, error) {
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.AdminNote = note
		return nil
	})
}

// UpdateAddress replaces the request's location.
func (s *RequestService) UpdateAddress(ctx context.Context, caller models.Identity, tenantID, id string, location models.Location) (*models.ServiceRequest, error) {
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.Location = location
		return nil
	})
}

// UpdateAssignedStaff replaces the assigned staff list and notifies the
// newly assigned members.
func (s *RequestService) UpdateAssignedStaff(ctx context.Context, caller models.Identity, tenantID, id string, staffIDs []string) (*models.ServiceRequest, error) {
	return s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		previous := make(map[string]bool, len(r.AssignedStaff))
		for _, sid := range r.AssignedStaff {
			previous[sid] = true
		}
		r.AssignedStaff = staffIDs
		for _, sid := range staffIDs {
			if !previous[sid] {
				s.notifier.Notify(Notification{
					UserID:    sid,
					Type:      "assignment",
					Title:     "Assigned to " + r.Title,
					Message:   "You have been assigned to a service request.",
					RelatedID: r.ID,
				})
			}
		}
		return nil
	})
}

// AddAcceptanceLog prepends a job acceptance record (newest first) and
// returns the round-trip distance from the accepting staff member to the
// request location. The distance is derived, never stored.
func (s *RequestService) AddAcceptanceLog(ctx context.Context, caller models.Identity, tenantID, id string, coords models.Coordinates, platform string) (*models.JobAcceptanceLog, Distance, error) {
	entry := models.JobAcceptanceLog{
		ID:          uuid.NewString(),
		AcceptedAt:  time.Now(),
		Coordinates: coords,
		Platform:    platform,
	}
	if caller.User != nil {
		entry.AcceptedBy = &models.AcceptedBy{
			ID:   caller.User.ID,
			Name: caller.User.FullName,
			Role: caller.User.Role,
		}
	}

	var distance Distance
	_, err := s.mutate(ctx, caller, tenantID, id, func(r *models.ServiceRequest) error {
		r.AcceptanceLogs = append([]models.JobAcceptanceLog{entry}, r.AcceptanceLogs...)
		distance = TravelDistance(coords, models.Coordinates{
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
		})
		return nil
	})
	if err != nil {
		return nil, Distance{}, err
	}
	return &entry, distance, nil
}

// ClearPastRequests removes every completed or canceled request from the
// live list. The archive is untouched: this is a live-view filter, not a
// ledger deletion. It returns the number of requests removed.
func (s *RequestService) ClearPastRequests(ctx context.Context, caller models.Identity, tenantID string) (int, error) {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return 0, err
	}
	if tenantID != "" {
		if _, err := s.tenants.EnsureWritable(ctx, tenantID); err != nil {
			return 0, err
		}
	}

	key := store.RequestsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, key, &requests); err != nil {
		return 0, fmt.Errorf("load requests: %w", err)
	}

	kept := requests[:0]
	removed := 0
	for _, r := range requests {
		if r.IsTerminal() {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.store.Set(ctx, key, kept); err != nil {
		return 0, fmt.Errorf("save requests: %w", err)
	}
	s.log.Info().Int("removed", removed).Str("tenant_id", tenantID).Msg("past requests cleared")
	return removed, nil
}

// Delete hard-removes a request from the live list only. Deletion
// requires the delete capability; the archive keeps its mirror.
func (s *RequestService) Delete(ctx context.Context, caller models.Identity, tenantID, id string) error {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return err
	}
	if !caller.IsAdmin() && !caller.User.Permissions.CanDeleteData {
		return fmt.Errorf("request deletion requires the delete capability: %w", models.ErrForbidden)
	}
	if tenantID != "" {
		if _, err := s.tenants.EnsureWritable(ctx, tenantID); err != nil {
			return err
		}
	}

	key := store.RequestsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, key, &requests); err != nil {
		return fmt.Errorf("load requests: %w", err)
	}

	idx := -1
	for i := range requests {
		if requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("request %s: %w", id, models.ErrNotFound)
	}

	requests = append(requests[:idx], requests[idx+1:]...)
	if err := s.store.Set(ctx, key, requests); err != nil {
		return fmt.Errorf("save requests: %w", err)
	}
	return nil
}

// authorizeHandling checks scope membership and the request-handling
// capability. Fail closed: an unresolved or unprivileged caller is
// rejected, never defaulted to allow.
func (s *RequestService) authorizeHandling(caller models.Identity, tenantID string) error {
	if err := caller.AuthorizeScope(tenantID); err != nil {
		return err
	}
	if caller.IsAdmin() {
		return nil
	}
	if caller.User == nil || !caller.User.Permissions.CanHandleRequests {
		return fmt.Errorf("request handling capability required: %w", models.ErrForbidden)
	}
	return nil
}

// mutate applies fn to the request with the given id under the scope's
// key lock, persists the list, and re-mirrors the whole request into the
// archive. A missing id fails with NotFound.
func (s *RequestService) mutate(ctx context.Context, caller models.Identity, tenantID, id string, fn func(*models.ServiceRequest) error) (*models.ServiceRequest, error) {
	if err := s.authorizeHandling(caller, tenantID); err != nil {
		return nil, err
	}
	if tenantID != "" {
		if _, err := s.tenants.EnsureWritable(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	key := store.RequestsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var requests []models.ServiceRequest
	if _, err := s.store.Get(ctx, key, &requests); err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}

	idx := -1
	for i := range requests {
		if requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("request %s: %w", id, models.ErrNotFound)
	}

	if err := fn(&requests[idx]); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, key, requests); err != nil {
		return nil, fmt.Errorf("save requests: %w", err)
	}
	if err := s.mirror(ctx, tenantID, requests[idx]); err != nil {
		return nil, err
	}

	updated := requests[idx]
	return &updated, nil
}

// mirror writes the full current snapshot of a request into the archive:
// updated in place when a mirror exists, appended otherwise. ArchivedAt
// is set once; LastUpdatedAt moves on every mirror.
func (s *RequestService) mirror(ctx context.Context, tenantID string, request models.ServiceRequest) error {
	key := store.ArchivedRequestsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var archived []models.ArchivedRequest
	if _, err := s.store.Get(ctx, key, &archived); err != nil {
		return fmt.Errorf("load archived requests: %w", err)
	}

	now := time.Now()
	found := false
	for i := range archived {
		if archived[i].ID == request.ID {
			archived[i].ServiceRequest = request
			archived[i].LastUpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		archived = append(archived, models.ArchivedRequest{
			ServiceRequest: request,
			ArchivedAt:     now,
			LastUpdatedAt:  now,
		})
	}

	if err := s.store.Set(ctx, key, archived); err != nil {
		return fmt.Errorf("save archived requests: %w", err)
	}
	return nil
}
