package functions

import (
	"context"
	"errors"

	"github.com/kitchenkin/recipes/backend/internal/types"
)

var errNoEndpoint = errors.New("function endpoint is not configured")

type uploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Image    string `json:"image"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// ImageUploader forwards pictures to the image upload function
type ImageUploader struct {
	client   *Client
	endpoint string
}

func NewImageUploader(client *Client, endpoint string) *ImageUploader {
	return &ImageUploader{client: client, endpoint: endpoint}
}

// Ingest uploads the picture and returns the URLs of its renditions
func (u *ImageUploader) Ingest(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error) {
	if u.endpoint == "" {
		return nil, errNoEndpoint
	}
	var renditions types.ImageRenditions
	err := u.client.PostJSON(ctx, u.endpoint, uploadRequest{
		FileName: image.FileName,
		FileType: image.FileType,
		Image:    image.Encoded,
	}, &renditions)
	if err != nil {
		return nil, err
	}
	return &renditions, nil
}

// ImageDeleter asks the image delete function to drop every rendition of an image
type ImageDeleter struct {
	client   *Client
	endpoint string
}

func NewImageDeleter(client *Client, endpoint string) *ImageDeleter {
	return &ImageDeleter{client: client, endpoint: endpoint}
}

// Remove requests deletion. The function's answer body is ignored.
func (d *ImageDeleter) Remove(ctx context.Context, contentID string) error {
	if d.endpoint == "" {
		return errNoEndpoint
	}
	return d.client.PostJSON(ctx, d.endpoint, deleteRequest{ID: contentID}, nil)
}
