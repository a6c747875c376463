package workflow

import (
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
)

const scanPayloadPrefix = "business_"

// ParseScanPayload extracts the business id from a "business_<id>" deep-link parameter.
func ParseScanPayload(payload string) (int64, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(payload), scanPayloadPrefix)
	if !ok || raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, domainErrors.ErrInvalidScanPayload
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainErrors.ErrInvalidScanPayload
	}
	return id, nil
}

// ScanPayload builds the deep-link parameter encoded in a business QR code.
func ScanPayload(businessID int64) string {
	return scanPayloadPrefix + strconv.FormatInt(businessID, 10)
}
