package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/benchgate/benchgate/internal/models"
)

// BlobStore keeps baselines in an Azure Blob Storage container, for CI
// pipelines that share one baseline across runners instead of committing a
// file to the repository.
type BlobStore struct {
	client    *azblob.Client
	container string
}

// NewBlobStore connects to the given storage account service URL
// (https://<account>.blob.core.windows.net) using the default credential
// chain.
func NewBlobStore(serviceURL, container string) (*BlobStore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building azure credential: %w", err)
	}
	return NewBlobStoreWithCredential(serviceURL, container, cred)
}

// NewBlobStoreWithCredential is like NewBlobStore with an explicit credential.
func NewBlobStoreWithCredential(serviceURL, container string, cred azcore.TokenCredential) (*BlobStore, error) {
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob client: %w", err)
	}
	return &BlobStore{client: client, container: container}, nil
}

// Load fetches a baseline blob. Like the file store, an absent or corrupt
// blob yields nil; only transport-level failures are reported.
func (s *BlobStore) Load(ctx context.Context, name string) (*models.BaselineData, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("downloading baseline blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading baseline blob %s: %w", name, err)
	}

	return decode(data, name), nil
}

// Save uploads the result set with a fresh timestamp, overwriting any
// existing baseline blob of the same name.
func (s *BlobStore) Save(ctx context.Context, name string, results []models.BenchmarkResult) error {
	data, err := json.MarshalIndent(models.NewBaselineData(results), "", "  ")
	if err != nil {
		return err
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return fmt.Errorf("uploading baseline blob %s: %w", name, err)
	}

	slog.Debug("baseline uploaded", "container", s.container, "blob", name, "bytes", len(data))
	return nil
}
