package types

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex whl_01HZX3K1Q2V6D1T4Q4QJ6S6M8B
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	sidErr       error
	once         sync.Once
)

func initializeSID() {
	sidGenerator, sidErr = shortid.New(1, shortid.DefaultABC, 2342)
}

// GenerateShortIDWithPrefix returns a short client-facing id such as att_dppUr5jgR.
// Falls back to a ulid when the short id generator is unavailable.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)
	if sidErr != nil {
		return GenerateUUIDWithPrefix(prefix)
	}

	id, err := sidGenerator.Generate()
	if err != nil {
		return GenerateUUIDWithPrefix(prefix)
	}
	if prefix == "" {
		return id
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

const (
	UUID_PREFIX_REQUEST       = "req"
	UUID_PREFIX_WEBHOOK_LOG   = "whl"
	UUID_PREFIX_ATTEMPT_NONCE = "att"
)
