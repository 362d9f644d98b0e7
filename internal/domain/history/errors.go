package history

import "errors"

var ErrSnapshotNotFound = errors.New("history snapshot not found")
