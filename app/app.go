// Package app is the view-model behind every user surface. Commands run
// against an App, which serialises them, records mutations in the activity
// journal and rebuilds the tree view after each one.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/JoeSaf/StorageBuckets/qr"
	"github.com/JoeSaf/StorageBuckets/records"
	"github.com/JoeSaf/StorageBuckets/scan"
	"github.com/JoeSaf/StorageBuckets/storage"
)

var (
	ErrNotConfirmed        = errors.New("deletion was not confirmed")
	ErrUnresolvedSelection = errors.New("selection has items with no resolvable location")
	ErrReadOnly            = errors.New("storage is read-only")
)

// Level is the severity of an Outcome.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Outcome is what a command reports back to the user.
type Outcome struct {
	Level   Level
	Title   string
	Message string
}

// Silent reports whether there is nothing to show.
func (o Outcome) Silent() bool {
	return o.Title == "" && o.Message == ""
}

func info(title, message string) Outcome {
	return Outcome{Level: Info, Title: title, Message: message}
}

func warning(title, message string) Outcome {
	return Outcome{Level: Warning, Title: title, Message: message}
}

func failure(title string, err error) Outcome {
	return Outcome{Level: Error, Title: title, Message: err.Error()}
}

// View is the state a surface renders: the filtered tree, the QR pane and
// the last outcome.
type View struct {
	Filter  string
	Tree    *scan.FileData
	QR      *qr.Code
	QRNode  string
	Outcome Outcome
}

// Options tunes an App.
type Options struct {
	// DownloadFolder is created inside every download destination.
	DownloadFolder string
	ReadOnly       bool
}

type App struct {
	mu sync.Mutex

	storage  *storage.Storage
	codes    *qr.Service
	activity records.Store[records.Activity]
	opts     Options

	view     View
	observer func(command string, out Outcome)
	now      func() time.Time
}

func New(st *storage.Storage, codes *qr.Service, activity records.Store[records.Activity], opts Options) *App {
	return &App{
		storage:  st,
		codes:    codes,
		activity: activity,
		opts:     opts,
		now:      time.Now,
	}
}

// OnCommand registers fn to receive the name and outcome of every executed
// command.
func (a *App) OnCommand(fn func(command string, out Outcome)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observer = fn
}

func (a *App) Storage() *storage.Storage {
	return a.storage
}

func (a *App) ReadOnly() bool {
	return a.opts.ReadOnly
}

// View returns a snapshot of the current view. The tree is shared and must
// not be modified.
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.Tree == nil {
		a.rebuild()
	}
	return a.view
}

// Execute runs cmd, rebuilds the tree and stores the outcome in the view.
func (a *App) Execute(cmd Command) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out Outcome
	if _, ok := cmd.(mutator); ok && a.opts.ReadOnly {
		out = failure("Error", ErrReadOnly)
	} else {
		out = cmd.Execute(a)
	}

	if err := a.rebuild(); err != nil && out.Level != Error {
		out = failure("Error", err)
	}
	a.view.Outcome = out

	if out.Level == Error {
		log.Errorf("%s: %s", cmd.Action(), out.Message)
	} else {
		log.Debugf("%s: %s", cmd.Action(), out.Message)
	}
	if a.observer != nil {
		a.observer(cmd.Action(), out)
	}
	return out
}

// rebuild is the render step: it rescans both areas with the current filter.
func (a *App) rebuild() error {
	layout := a.storage.Layout()
	tree, err := scan.Build(layout.Uploads, layout.Buckets, a.view.Filter)
	if err != nil {
		log.Errorf("Failed to scan storage: %v", err)
		return err
	}
	a.view.Tree = tree
	return nil
}

// record appends one entry to the activity journal. A journal failure is
// logged and otherwise ignored.
func (a *App) record(action string, sources []string, dest string, failed []*storage.ItemError) {
	if a.activity == nil {
		return
	}
	entry := records.Activity{
		Timestamp: a.now().Format(time.RFC3339),
		Action:    action,
		Sources:   sources,
		Dest:      dest,
	}
	for _, f := range failed {
		entry.Errors = append(entry.Errors, f.Error())
	}
	if err := a.activity.Append(entry); err != nil {
		log.Errorf("Failed to log activity: %v", err)
	}
}

// Activity returns the activity journal in order.
func (a *App) Activity() ([]records.Activity, error) {
	if a.activity == nil {
		return nil, nil
	}
	return a.activity.All()
}
