package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/records"
	"github.com/JoeSaf/StorageBuckets/scan"
)

type IndexData struct {
	Version  string
	ReadOnly bool
	Root     string
}

type OutcomeJSON struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type QRPane struct {
	NodeID  string `json:"nodeId"`
	ID      int    `json:"id"`
	Payload string `json:"payload"`
}

type TreeResponse struct {
	Filter  string       `json:"filter"`
	Rows    []scan.Row   `json:"rows"`
	QR      *QRPane      `json:"qr,omitempty"`
	Outcome *OutcomeJSON `json:"outcome,omitempty"`
}

type BucketRequest struct {
	Name string `json:"name"`
}

type DownloadRequest struct {
	IDs  []string `json:"ids"`
	Dest string   `json:"dest"`
}

type LogResponse struct {
	Uploads  []records.UploadRecord `json:"uploads"`
	Activity []records.Activity     `json:"activity"`
}

func outcomeJSON(out app.Outcome) *OutcomeJSON {
	if out.Silent() {
		return nil
	}
	return &OutcomeJSON{Level: out.Level.String(), Title: out.Title, Message: out.Message}
}

// outcomeStatus maps an outcome level to an HTTP status.
func outcomeStatus(out app.Outcome) int {
	switch out.Level {
	case app.Warning:
		return fiber.StatusBadRequest
	case app.Error:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusOK
	}
}

func sendOutcome(c *fiber.Ctx, out app.Outcome) error {
	body := outcomeJSON(out)
	if body == nil {
		body = &OutcomeJSON{Level: out.Level.String()}
	}
	return c.Status(outcomeStatus(out)).JSON(body)
}

func treeResponse(view app.View) TreeResponse {
	resp := TreeResponse{
		Filter:  view.Filter,
		Rows:    []scan.Row{},
		Outcome: outcomeJSON(view.Outcome),
	}
	if view.Tree != nil {
		resp.Rows = view.Tree.Rows()
	}
	if view.QR != nil {
		resp.QR = &QRPane{NodeID: view.QRNode, ID: view.QR.ID, Payload: view.QR.Payload}
	}
	return resp
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.Render("index", IndexData{
		Version:  s.opts.Version,
		ReadOnly: s.app.ReadOnly(),
		Root:     s.app.Storage().Layout().Root,
	})
}

// handleTree returns the tree rows. A q parameter, even empty, sets the
// search filter first.
func (s *Server) handleTree(c *fiber.Ctx) error {
	if _, ok := c.Queries()["q"]; ok {
		s.app.Execute(app.Search{Term: c.Query("q")})
	} else {
		s.app.Execute(app.Refresh{})
	}
	return c.JSON(treeResponse(s.app.View()))
}

// bucketChoice keeps an existing bucket name; anything else means the
// uploads root.
func (s *Server) bucketChoice(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && s.app.Storage().BucketExists(name) {
		return name
	}
	return ""
}

func (s *Server) handleListBuckets(c *fiber.Ctx) error {
	buckets, err := s.app.Storage().ListBuckets()
	if err != nil {
		return err
	}
	return c.JSON(buckets)
}

func (s *Server) handleCreateBucket(c *fiber.Ctx) error {
	defer s.track()()

	var req BucketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return sendOutcome(c, s.app.Execute(app.CreateBucket{Name: req.Name}))
}

func (s *Server) handleDeleteBucket(c *fiber.Ctx) error {
	defer s.track()()

	out := s.app.Execute(app.DeleteBucket{
		Name:      c.Params("name"),
		Confirmed: c.QueryBool("confirm"),
	})
	return sendOutcome(c, out)
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	defer s.track()()

	var req DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return sendOutcome(c, s.app.Execute(app.Download{NodeIDs: req.IDs, Dest: req.Dest}))
}

// handleQR renders the QR code of a file node as PNG. Without an id the QR
// pane is cleared.
func (s *Server) handleQR(c *fiber.Ctx) error {
	id := c.Query("id")
	out := s.app.Execute(app.ShowQR{NodeID: id})
	if id == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if out.Level != app.Info {
		return sendOutcome(c, out)
	}

	code := s.app.View().QR
	if code == nil {
		return fiber.NewError(fiber.StatusNotFound, "QR code not available")
	}
	data, err := code.PNG()
	if err != nil {
		return err
	}
	c.Set("Content-Type", "image/png")
	c.Set("X-QR-Payload", code.Payload)
	return c.Send(data)
}

func (s *Server) handleLog(c *fiber.Ctx) error {
	uploads, err := s.app.Storage().History()
	if err != nil {
		return err
	}
	activity, err := s.app.Activity()
	if err != nil {
		return err
	}
	if activity == nil {
		activity = []records.Activity{}
	}
	return c.JSON(LogResponse{Uploads: uploads, Activity: activity})
}
