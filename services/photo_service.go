package services

import (
	"fmt"
	"strings"

	"github.com/roadcall/roadcall-api/utils"
)

// s3RefPrefix marks a photo entry whose bytes live in S3 rather than
// inline in the request.
const s3RefPrefix = "s3:"

// PhotoService validates incoming request photos and decides where their
// bytes live. Photos arrive as data URIs; with an S3 backend configured
// the decoded bytes are offloaded and the request stores an s3: reference,
// otherwise the data URI is stored inline.
type PhotoService interface {
	// StorePhoto validates a data URI and returns the value to store on
	// the request (the data URI itself, or an s3: reference).
	StorePhoto(dataURI string) (string, error)

	// ResolvePhotoURL turns a stored photo value into something the
	// presentation layer can render (a presigned URL for offloaded
	// photos, the data URI itself otherwise).
	ResolvePhotoURL(stored string) (string, error)
}

// InlinePhotoService keeps photo data URIs inline on the request.
type InlinePhotoService struct{}

// S3PhotoService offloads photo bytes to S3.
type S3PhotoService struct {
	s3Service S3Interface
}

var photoServiceInstance PhotoService

// InitPhotoService initializes the photo service. With a nil S3 backend
// photos stay inline.
func InitPhotoService(s3Service S3Interface) PhotoService {
	if s3Service == nil {
		photoServiceInstance = &InlinePhotoService{}
	} else {
		photoServiceInstance = &S3PhotoService{s3Service: s3Service}
	}
	return photoServiceInstance
}

// GetPhotoService returns the initialized photo service instance
func GetPhotoService() PhotoService {
	return photoServiceInstance
}

// SetPhotoService sets the photo service instance (primarily for testing)
func SetPhotoService(service PhotoService) {
	photoServiceInstance = service
}

// StorePhoto validates the data URI and returns it unchanged.
func (s *InlinePhotoService) StorePhoto(dataURI string) (string, error) {
	if err := utils.ValidatePhotoDataURI(dataURI); err != nil {
		return "", err
	}
	return dataURI, nil
}

// ResolvePhotoURL returns the inline data URI as-is.
func (s *InlinePhotoService) ResolvePhotoURL(stored string) (string, error) {
	return stored, nil
}

// StorePhoto validates the data URI, uploads the decoded bytes, and
// returns an s3: reference.
func (s *S3PhotoService) StorePhoto(dataURI string) (string, error) {
	if err := utils.ValidatePhotoDataURI(dataURI); err != nil {
		return "", err
	}

	contentType, data, err := utils.ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadPhoto(data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to offload photo: %w", err)
	}

	return s3RefPrefix + s3Key, nil
}

// ResolvePhotoURL generates a presigned URL for offloaded photos and
// passes inline values through untouched.
func (s *S3PhotoService) ResolvePhotoURL(stored string) (string, error) {
	if !strings.HasPrefix(stored, s3RefPrefix) {
		return stored, nil
	}

	url, err := s.s3Service.GetPresignedURL(strings.TrimPrefix(stored, s3RefPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to generate photo URL: %w", err)
	}
	return url, nil
}
