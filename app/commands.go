package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JoeSaf/StorageBuckets/qr"
	"github.com/JoeSaf/StorageBuckets/scan"
	"github.com/JoeSaf/StorageBuckets/storage"
)

// Command is one user action.
type Command interface {
	Action() string
	Execute(a *App) Outcome
}

// mutator marks commands that change stored state.
type mutator interface {
	mutates()
}

// RefForID maps a tree node ID to the stored file it names. Only file nodes
// resolve.
func RefForID(id string) (storage.Ref, bool) {
	parts := strings.Split(id, "/")
	switch {
	case len(parts) == 2 && parts[0] == scan.UploadsID && parts[1] != "":
		return storage.UploadsRef(parts[1]), true
	case len(parts) == 3 && parts[0] == scan.BucketsID && parts[1] != "" && parts[2] != "":
		return storage.BucketRef(parts[1], parts[2]), true
	}
	return storage.Ref{}, false
}

// Upload copies Sources into Bucket, or into the uploads root when Bucket
// is empty.
type Upload struct {
	Sources []storage.Source
	Bucket  string

	OnItem func(name string, err error)
}

func (Upload) Action() string { return "upload" }
func (Upload) mutates() {}

func (c Upload) Execute(a *App) Outcome {
	if len(c.Sources) == 0 {
		return info("No file selected", "No files were selected for upload.")
	}

	report, err := a.storage.Upload(storage.UploadRequest{
		Sources: c.Sources,
		Bucket:  c.Bucket,
		OnItem:  c.OnItem,
	})
	if err != nil {
		return failure("Upload Status", err)
	}

	names := make([]string, 0, len(c.Sources))
	for _, rec := range report.Uploaded {
		names = append(names, rec.FileName)
	}
	for _, f := range report.Failed {
		names = append(names, f.Name)
	}
	a.record("upload", names, report.Destination, report.Failed)

	if len(report.Failed) > 0 {
		return Outcome{
			Level:   Error,
			Title:   "Upload Status",
			Message: fmt.Sprintf("Uploaded %d of %d files to %s.\n%v", len(report.Uploaded), len(c.Sources), report.Destination, joinItems(report.Failed)),
		}
	}
	return info("Upload Status", fmt.Sprintf("Uploaded %d files to %s.", len(report.Uploaded), report.Destination))
}

type CreateBucket struct {
	Name string
}

func (CreateBucket) Action() string { return "create-bucket" }
func (CreateBucket) mutates() {}

func (c CreateBucket) Execute(a *App) Outcome {
	name := strings.TrimSpace(c.Name)
	err := a.storage.CreateBucket(name)
	switch {
	case errors.Is(err, storage.ErrEmptyBucketName), errors.Is(err, storage.ErrInvalidBucketName):
		return Outcome{Level: Warning, Title: "Input Error", Message: err.Error()}
	case err != nil:
		return failure("Error", err)
	}
	a.record("create-bucket", []string{name}, a.storage.Rel(a.storage.BucketPath(name)), nil)
	return info("Success", fmt.Sprintf("Bucket '%s' created successfully.", name))
}

// DeleteBucket removes a bucket with all its files. Nothing happens unless
// Confirmed is set.
type DeleteBucket struct {
	Name      string
	Confirmed bool
}

func (DeleteBucket) Action() string { return "delete-bucket" }
func (DeleteBucket) mutates() {}

func (c DeleteBucket) Execute(a *App) Outcome {
	if !c.Confirmed {
		return warning("Delete Bucket", fmt.Sprintf("Bucket '%s' was kept: %v.", c.Name, ErrNotConfirmed))
	}
	err := a.storage.DeleteBucket(c.Name)
	switch {
	case errors.Is(err, storage.ErrNoBuckets), errors.Is(err, storage.ErrUnknownBucket):
		return warning("Error", err.Error())
	case err != nil:
		return failure("Error", err)
	}
	a.record("delete-bucket", []string{c.Name}, "", nil)
	return info("Success", fmt.Sprintf("Bucket '%s' deleted successfully.", c.Name))
}

// Search sets the tree filter. The empty term shows everything.
type Search struct {
	Term string
}

func (Search) Action() string { return "search" }

func (c Search) Execute(a *App) Outcome {
	a.view.Filter = strings.TrimSpace(c.Term)
	return Outcome{}
}

// ShowQR fills the QR pane with the code of a file node. An empty NodeID
// clears the pane. A read-only App only shows codes that are already saved.
type ShowQR struct {
	NodeID string
}

func (ShowQR) Action() string { return "show-qr" }

func (c ShowQR) Execute(a *App) Outcome {
	if c.NodeID == "" {
		a.view.QR = nil
		a.view.QRNode = ""
		return Outcome{}
	}

	ref, ok := RefForID(c.NodeID)
	if !ok {
		return warning("QR Code", fmt.Sprintf("'%s' is not a file.", c.NodeID))
	}
	path, err := a.storage.Resolve(ref)
	if err != nil {
		return failure("Error", err)
	}
	payload := a.storage.Rel(path)
	var code *qr.Code
	if a.opts.ReadOnly {
		code, err = a.codes.Lookup(payload)
		if errors.Is(err, qr.ErrNotStored) {
			return warning("QR Code", fmt.Sprintf("No QR code is stored for %s and %v.", payload, ErrReadOnly))
		}
	} else {
		code, err = a.codes.Code(payload)
	}
	if err != nil {
		return failure("Error", fmt.Errorf("could not generate QR code: %w", err))
	}

	a.view.QR = code
	a.view.QRNode = c.NodeID
	if code.Reused {
		return info("QR Code", fmt.Sprintf("QR code %d for %s", code.ID, code.Payload))
	}
	return info("QR Code", fmt.Sprintf("Generated QR code %d for %s", code.ID, code.Payload))
}

// Download copies the selected file nodes to Dest.
type Download struct {
	NodeIDs []string
	Dest    string

	OnItem func(name string, err error)
}

func (Download) Action() string { return "download" }

func (c Download) Execute(a *App) Outcome {
	if len(c.NodeIDs) == 0 {
		return warning("Download", "No files were selected for download.")
	}
	if strings.TrimSpace(c.Dest) == "" {
		return warning("Input Error", "No download destination given.")
	}

	var refs []storage.Ref
	var unresolved []string
	for _, id := range c.NodeIDs {
		if ref, ok := RefForID(id); ok {
			refs = append(refs, ref)
		} else {
			unresolved = append(unresolved, id)
		}
	}

	var failed []*storage.ItemError
	copied := 0
	dir := c.Dest
	if len(refs) > 0 {
		report, err := a.storage.Download(storage.DownloadRequest{
			Refs:   refs,
			Dest:   c.Dest,
			Folder: a.opts.DownloadFolder,
			OnItem: c.OnItem,
		})
		if err != nil {
			return failure("Error", err)
		}
		failed = report.Failed
		copied = len(report.Copied)
		dir = report.Directory

		names := make([]string, 0, len(refs))
		for _, ref := range refs {
			names = append(names, ref.String())
		}
		a.record("download", names, dir, failed)
	}

	var errs []error
	if len(unresolved) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnresolvedSelection, strings.Join(unresolved, ", ")))
	}
	if len(failed) > 0 {
		errs = append(errs, joinItems(failed))
	}
	if len(errs) > 0 {
		return Outcome{
			Level:   Error,
			Title:   "Error",
			Message: fmt.Sprintf("Downloaded %d of %d items to %s.\n%v", copied, len(c.NodeIDs), dir, errors.Join(errs...)),
		}
	}
	return info("Success", fmt.Sprintf("Downloaded %d files to %s.", copied, dir))
}

// Refresh only rebuilds the tree.
type Refresh struct{}

func (Refresh) Action() string { return "refresh" }

func (Refresh) Execute(*App) Outcome {
	return Outcome{}
}

func joinItems(items []*storage.ItemError) error {
	errs := make([]error, len(items))
	for i, item := range items {
		errs[i] = item
	}
	return errors.Join(errs...)
}
