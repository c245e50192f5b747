package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document numbers are human-readable but only coarsely time-ordered:
// PREFIX-YYYYMMDD-XXXXXX. The suffix is short enough that collisions are
// possible; callers retry on a unique-constraint violation.
const numberAttempts = 3

func documentNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}

func NewOrderNumber() string {
	return documentNumber("ORD")
}

func NewQuotationNumber() string {
	return documentNumber("QUO")
}
