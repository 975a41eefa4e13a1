package football

import (
	"time"

	"github.com/google/uuid"
)

// Wall clock and identifier source. Tests in this package swap them out.
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.New
)
