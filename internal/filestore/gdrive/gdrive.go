package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"scriptorium/internal/filestore"
	"scriptorium/internal/models"
)

const (
	textMimeType  = "text/plain"
	photoMimeType = "image/jpeg"
)

// DriveStore implements filestore.Store on top of Google Drive.
// Texts are read from one folder, photos are archived into another.
type DriveStore struct {
	svc            *drive.Service
	textsFolderID  string
	photosFolderID string
}

// New builds a Drive client from a service-account credentials file
func New(ctx context.Context, credentialsFile, textsFolderID, photosFolderID string) (*DriveStore, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveStore{
		svc:            svc,
		textsFolderID:  textsFolderID,
		photosFolderID: photosFolderID,
	}, nil
}

// ListTexts returns all non-trashed plain-text files in the texts folder
func (s *DriveStore) ListTexts(ctx context.Context) ([]models.TextFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false",
		s.textsFolderID, textMimeType)

	var texts []models.TextFile
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list text files: %w", err)
		}

		for _, f := range list.Files {
			texts = append(texts, models.TextFile{ID: f.Id, Name: f.Name})
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	if len(texts) == 0 {
		return nil, filestore.ErrNoTexts
	}
	return texts, nil
}

// Fetch downloads the full content of a text file
func (s *DriveStore) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// CountMatching returns how many files in the photos folder contain
// the given substring in their name
func (s *DriveStore) CountMatching(ctx context.Context, substr string) (int, error) {
	query := fmt.Sprintf("'%s' in parents and name contains '%s' and trashed = false",
		s.photosFolderID, substr)

	count := 0
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return 0, fmt.Errorf("failed to count archive entries: %w", err)
		}

		count += len(list.Files)
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return count, nil
}

// SavePhoto uploads an archive entry into the photos folder
func (s *DriveStore) SavePhoto(ctx context.Context, name string, r io.Reader) error {
	file := &drive.File{
		Name:     name,
		Parents:  []string{s.photosFolderID},
		MimeType: photoMimeType,
	}

	_, err := s.svc.Files.Create(file).Media(r).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload photo %s: %w", name, err)
	}
	return nil
}
