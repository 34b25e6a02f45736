package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newDocumentNumber builds a human-facing document number such as
// REQ-20260831-4F2A1C. The uuid suffix keeps numbers unique without a
// counter table.
func newDocumentNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}
