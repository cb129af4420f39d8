package services

import (
	"fmt"
	"sync"
)

// MockS3Service is a mock implementation of S3Service for testing
type MockS3Service struct {
	uploadedPhotos map[string][]byte // map of S3 key to photo content
	mu             sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedPhotos: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// UploadPhoto simulates uploading photo bytes to S3
func (m *MockS3Service) UploadPhoto(data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s3Key := fmt.Sprintf("photos/mock_%d", len(m.uploadedPhotos)+1)
	m.uploadedPhotos[s3Key] = data
	return s3Key, nil
}

// GetPresignedURL simulates generating a presigned URL
func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	// Check if photo exists in mock storage
	m.mu.RLock()
	_, exists := m.uploadedPhotos[s3Key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("photo not found in mock S3: %s", s3Key)
	}

	// Return a mock presigned URL
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}

// DeletePhoto simulates deleting a photo from S3
func (m *MockS3Service) DeletePhoto(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedPhotos, s3Key)
	m.mu.Unlock()

	return nil
}

// GetUploadedPhotos returns all uploaded photos (for testing assertions)
func (m *MockS3Service) GetUploadedPhotos() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	photos := make(map[string][]byte, len(m.uploadedPhotos))
	for k, v := range m.uploadedPhotos {
		photos[k] = v
	}
	return photos
}

// PhotoExists checks if a photo exists in mock storage
func (m *MockS3Service) PhotoExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedPhotos[s3Key]
	return exists
}

// Clear removes all photos from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.uploadedPhotos = make(map[string][]byte)
	m.mu.Unlock()
}
