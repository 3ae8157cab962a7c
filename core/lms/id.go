package lms

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// idCounter is seeded from the startup timestamp (ms) so restarts keep
// moving forward even though no cross-process guarantee is made.
var idCounter = time.Now().UnixNano() / int64(time.Millisecond)

// GenerateID returns an opaque id unique within this process.
func GenerateID() string {
	n := atomic.AddInt64(&idCounter, 1)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:7]
	return fmt.Sprintf("id_%d_%s", n, suffix)
}
