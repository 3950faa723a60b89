package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JoeSaf/StorageBuckets/storage"
)

// Prompter asks the user for input. Each surface brings its own: the CLI
// reads stdin, tests script the answers.
type Prompter interface {
	// AskString returns ok == false when the user cancelled.
	AskString(title, prompt string) (answer string, ok bool, err error)
	Confirm(title, prompt string) (bool, error)
	PickFiles(title string) ([]string, error)
	PickDir(title string) (string, error)
}

// UploadFlow asks for the files and, when buckets exist, for a bucket. A
// blank or unknown bucket choice uploads to the default directory.
func UploadFlow(a *App, p Prompter) (Command, error) {
	files, err := p.PickFiles("Select files to upload")
	if err != nil {
		return nil, err
	}
	cmd := Upload{Sources: storage.SourcesFromPaths(files)}
	if len(files) == 0 {
		return cmd, nil
	}

	buckets, err := a.storage.ListBuckets()
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return cmd, nil
	}

	choice, ok, err := p.AskString("Select Bucket", "Available buckets:\n"+strings.Join(buckets, "\n")+
		"\n\nType the bucket name or leave blank to upload to the default directory:")
	if err != nil {
		return nil, err
	}
	choice = strings.TrimSpace(choice)
	if ok && slices.Contains(buckets, choice) {
		cmd.Bucket = choice
	}
	return cmd, nil
}

// CreateBucketFlow asks for the new bucket's name. A cancelled prompt
// yields an empty name, which the command rejects.
func CreateBucketFlow(_ *App, p Prompter) (Command, error) {
	name, _, err := p.AskString("Input", "Enter bucket name:")
	if err != nil {
		return nil, err
	}
	return CreateBucket{Name: name}, nil
}

// DeleteBucketFlow lists the buckets, asks which one to delete and asks for
// confirmation. A nil command means the user cancelled the name prompt.
func DeleteBucketFlow(a *App, p Prompter) (Command, error) {
	buckets, err := a.storage.ListBuckets()
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		// Let the command report that there is nothing to delete
		return DeleteBucket{Confirmed: true}, nil
	}

	name, ok, err := p.AskString("Delete Bucket", fmt.Sprintf("Available buckets: %s\nEnter bucket name to delete:", strings.Join(buckets, ", ")))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if !slices.Contains(buckets, name) {
		return DeleteBucket{Name: name, Confirmed: true}, nil
	}

	confirmed, err := p.Confirm("Delete Bucket", fmt.Sprintf("Delete bucket '%s' and all of its files?", name))
	if err != nil {
		return nil, err
	}
	return DeleteBucket{Name: name, Confirmed: confirmed}, nil
}

// DownloadFlow asks where the selected nodes should go: first with a
// directory picker, then as a typed path if nothing was picked.
func DownloadFlow(_ *App, p Prompter, nodeIDs []string) (Command, error) {
	dest, err := p.PickDir("Select download destination")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dest) == "" {
		typed, ok, err := p.AskString("Download", "Enter destination path:")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		dest = typed
	}
	return Download{NodeIDs: nodeIDs, Dest: strings.TrimSpace(dest)}, nil
}
