// Package files is the image store capability. Stored images are addressed
// by a path that begins with "/".
package files

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNotExist is returned when deleting a path that holds no file.
var ErrNotExist = errors.New("file does not exist")

// Store saves and deletes uploaded images.
type Store interface {
	// Save stores data and returns its path. filename only contributes
	// its extension.
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// Upload is an image received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// DeleteQuietly deletes each non-nil path and logs failures at Warn
// instead of returning them. Image cleanup never blocks a deletion.
func DeleteQuietly(ctx context.Context, store Store, log logrus.FieldLogger, paths ...*string) {
	for _, p := range paths {
		if p == nil || *p == "" {
			continue
		}
		if err := store.Delete(ctx, *p); err != nil {
			log.WithFields(logrus.Fields{"path": *p, "err": err}).Warn("image cleanup failed")
		}
	}
}
