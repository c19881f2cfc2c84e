// Package patients is the client for the remote patient records API.
package patients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-patient-portal/authfetch"
	"github.com/jrsteele09/go-patient-portal/blobstore"
	"github.com/jrsteele09/go-patient-portal/internal/errors"
)

type Client struct {
	baseURL string
	fetch   *authfetch.Client
}

func NewClient(baseURL string, fetch *authfetch.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   fetch,
	}
}

// List returns the patients visible to the caller.
func (c *Client) List(ctx context.Context) ([]Patient, error) {
	patients, err := authfetch.GetJSON[[]Patient](ctx, c.fetch, c.baseURL+"/patients")
	if err != nil {
		return nil, errors.Wrapf(mapStatus(err), "[patients List]")
	}
	return patients, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Patient, error) {
	if id == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[patients Get] patient id is required")
	}
	patient, err := authfetch.GetJSON[*Patient](ctx, c.fetch, c.patientURL(id))
	if err != nil {
		return nil, errors.Wrapf(mapStatus(err), "[patients Get] %s", id)
	}
	if patient == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "[patients Get] %s", id)
	}
	return patient, nil
}

// Update applies a partial update. When the API replies without a body the
// returned record is current merged with update.
func (c *Client) Update(ctx context.Context, current Patient, update PatientUpdate) (*Patient, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	updated, err := authfetch.PatchJSON[PatientUpdate, *Patient](ctx, c.fetch, c.patientURL(current.ID), &update)
	if err != nil {
		return nil, errors.Wrapf(mapStatus(err), "[patients Update] %s", current.ID)
	}
	if updated == nil {
		merged := Merge(current, update)
		updated = &merged
	}
	return updated, nil
}

// Replace writes the whole record with PUT.
func (c *Client) Replace(ctx context.Context, patient Patient) (*Patient, error) {
	if patient.ID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[patients Replace] patient id is required")
	}
	updated, err := authfetch.PutJSON[Patient, *Patient](ctx, c.fetch, c.patientURL(patient.ID), &patient)
	if err != nil {
		return nil, errors.Wrapf(mapStatus(err), "[patients Replace] %s", patient.ID)
	}
	if updated == nil {
		updated = &patient
	}
	return updated, nil
}

// RequestUpload asks the API for a pre-authorised blob URL for a new file.
func (c *Client) RequestUpload(ctx context.Context, id, fileName string, fileType FileType) (*UploadInfo, error) {
	if id == "" || fileName == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[patients RequestUpload] patient id and file name are required")
	}
	if fileType == "" {
		fileType = DefaultFileType
	}

	query := url.Values{}
	query.Set("file_name", fileName)
	query.Set("file_type", string(fileType))
	endpoint := c.patientURL(id) + "/files/upload-file-info?" + query.Encode()

	info, err := authfetch.PostJSON[struct{}, UploadInfo](ctx, c.fetch, endpoint, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(mapStatus(err), "[patients RequestUpload] %s", id)
	}
	if err := blobstore.ValidateURL(info.FileURL); err != nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidFileURL, info.FileURL)
	}
	return &info, nil
}

func (c *Client) patientURL(id string) string {
	return c.baseURL + "/patients/" + url.PathEscape(id)
}

func mapStatus(err error) error {
	var statusErr *authfetch.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", errors.ErrNotFound, statusErr.Error())
	}
	return err
}
