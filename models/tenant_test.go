package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanFeatures(t *testing.T) {
	starter := PlanFeatures(PlanStarter)
	assert.Equal(t, 5, starter.MaxUsers)
	assert.Equal(t, 200, starter.MaxRequests)
	assert.False(t, starter.APIAccess)

	pro := PlanFeatures(PlanProfessional)
	assert.Equal(t, 25, pro.MaxUsers)
	assert.Equal(t, 2000, pro.MaxRequests)

	enterprise := PlanFeatures(PlanEnterprise)
	assert.Equal(t, 100, enterprise.MaxUsers)
	assert.Equal(t, 10000, enterprise.MaxRequests)
	assert.True(t, enterprise.APIAccess)

	// Unknown plans fall back to starter limits
	assert.Equal(t, starter, PlanFeatures("mystery"))
}

func TestTenantIsWritable(t *testing.T) {
	for status, want := range map[string]bool{
		TenantStatusTrial:     true,
		TenantStatusActive:    true,
		TenantStatusSuspended: false,
		TenantStatusCanceled:  false,
	} {
		tenant := Tenant{Status: status}
		assert.Equal(t, want, tenant.IsWritable(), "status %s", status)
	}
}

func TestRequestIsTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		StatusCompleted: true,
		StatusCanceled:  true,
		StatusPending:   false,
		StatusScheduled: false,
	} {
		request := ServiceRequest{Status: status}
		assert.Equal(t, want, request.IsTerminal(), "status %s", status)
	}
}
