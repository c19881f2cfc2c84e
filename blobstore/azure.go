package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/rs/zerolog/log"
)

const defaultContentType = "application/octet-stream"

// AzureUploader writes block blobs to SAS URLs. The URL carries the
// authorisation, so no credential is configured.
type AzureUploader struct {
	BlockSize   int64
	Concurrency int
}

var _ Uploader = (*AzureUploader)(nil)

func NewAzureUploader() *AzureUploader {
	return &AzureUploader{
		BlockSize:   4 * 1024 * 1024,
		Concurrency: 2,
	}
}

func (a *AzureUploader) Upload(ctx context.Context, fileURL, contentType string, r io.Reader) error {
	if err := ValidateURL(fileURL); err != nil {
		return err
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	client, err := blockblob.NewClientWithNoCredential(fileURL, nil)
	if err != nil {
		return fmt.Errorf("[blobstore Upload] failed to create blob client: %w", err)
	}

	_, err = client.UploadStream(ctx, r, &blockblob.UploadStreamOptions{
		BlockSize:   a.BlockSize,
		Concurrency: a.Concurrency,
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return fmt.Errorf("[blobstore Upload] failed to upload blob: %w", err)
	}

	log.Debug().Str("content_type", contentType).Msg("blob uploaded")
	return nil
}
