package web

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/tus/tusd/pkg/filestore"
	"github.com/tus/tusd/pkg/handler"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/storage"
)

const tusBasePath = "/upload/tus/"

// setupTusUpload mounts the resumable upload endpoint. Completed uploads are
// imported with the Upload command under their original file name.
func (s *Server) setupTusUpload() error {
	if s.app.ReadOnly() || s.opts.TusDir == "" {
		log.Info("Resumable upload disabled")
		return nil
	}

	// Check the staging directory
	info, err := os.Stat(s.opts.TusDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s exists but is not a directory", s.opts.TusDir)
	case os.IsNotExist(err):
		if err := os.MkdirAll(s.opts.TusDir, 0755); err != nil {
			return fmt.Errorf("failed to create upload staging directory: %w", err)
		}
		log.Debugf("Created upload staging directory: %s", s.opts.TusDir)
	case err != nil:
		return fmt.Errorf("failed to check upload staging directory: %w", err)
	}

	store := filestore.New(s.opts.TusDir)
	composer := handler.NewStoreComposer()
	store.UseIn(composer)

	tusHandler, err := handler.NewHandler(handler.Config{
		StoreComposer:         composer,
		NotifyCompleteUploads: true,
		BasePath:              tusBasePath,
	})
	if err != nil {
		return fmt.Errorf("unable to create TUS handler: %w", err)
	}
	log.Debug("TUS upload handler initialized")

	// Handle completed uploads
	go func() {
		for event := range tusHandler.CompleteUploads {
			s.importUpload(event.Upload.ID, event.Upload.MetaData)
		}
	}()

	// Mount using the bridge pattern
	group := s.fiber.Group(tusBasePath, s.writable, adaptor.HTTPMiddleware(tusHandler.Middleware))
	group.Post("", adaptor.HTTPHandlerFunc(tusHandler.PostFile))
	group.Head(":id", adaptor.HTTPHandlerFunc(tusHandler.HeadFile))
	group.Patch(":id", adaptor.HTTPHandlerFunc(tusHandler.PatchFile))
	group.Get(":id", adaptor.HTTPHandlerFunc(tusHandler.GetFile))
	group.Delete(":id", adaptor.HTTPHandlerFunc(tusHandler.DelFile))
	return nil
}

// importUpload copies a finished staging file into storage and removes it.
func (s *Server) importUpload(id string, meta map[string]string) {
	defer s.track()()

	name := filepath.Base(meta["filename"])
	if name == "." || name == string(filepath.Separator) {
		name = id
	}
	staged := filepath.Join(s.opts.TusDir, id)
	log.Infof("Upload completed - ID: %s, Filename: %s, Bucket: %s", id, name, meta["bucket"])

	out := s.app.Execute(app.Upload{
		Sources: []storage.Source{{Path: staged, Name: name}},
		Bucket:  s.bucketChoice(meta["bucket"]),
	})
	if out.Level == app.Error {
		log.Errorf("Failed to import upload %s: %s", id, out.Message)
		return
	}

	for _, p := range []string{staged, staged + ".info"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to remove staging file %s: %v", p, err)
		}
	}
}
