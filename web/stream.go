package web

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/storage"
)

// handleFileStream streams the stored file behind a tree node ID.
func (s *Server) handleFileStream(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(400).SendString("id parameter required")
	}

	ref, ok := app.RefForID(id)
	if !ok {
		return c.Status(400).SendString("Node is not a file")
	}
	fullPath, err := s.app.Storage().Resolve(ref)
	if err != nil {
		log.Debugf("File request for %s: %v", id, err)
		return c.Status(404).SendString("File not found")
	}

	log.Debugf("File request for %s served from %s", id, fullPath)

	// Set appropriate content type
	ext := strings.ToLower(filepath.Ext(fullPath))
	c.Set("Content-Type", getFileContentType(ext))

	// Suggest a file name for documents
	if isDocumentFile(ext) {
		c.Set("Content-Disposition", "inline; filename=\""+filepath.Base(fullPath)+"\"")
	}

	return c.SendFile(fullPath)
}

// handleZipDownload streams a bucket, or the uploads root when bucket is
// empty, as a zip archive.
func (s *Server) handleZipDownload(c *fiber.Ctx) error {
	bucket := c.Query("bucket")
	st := s.app.Storage()
	if bucket != "" && !st.BucketExists(bucket) {
		return c.Status(404).SendString("Bucket not found")
	}

	log.Debugf("Zip download request for bucket: %q", bucket)

	// Set headers for zip download
	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", "attachment; filename=\""+storage.ArchiveName(bucket)+"\"")

	if err := st.ArchiveBucket(c.Response().BodyWriter(), bucket); err != nil {
		log.Errorf("Error creating zip: %v", err)
		return c.Status(500).SendString("Failed to create zip archive")
	}
	return nil
}

func isDocumentFile(ext string) bool {
	docExts := map[string]bool{
		".docx": true,
		".doc":  true,
		".xls":  true,
		".xlsx": true,
		".ppt":  true,
		".pptx": true,
		".pdf":  true,
		".csv":  true,
	}
	return docExts[ext]
}

func getFileContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
