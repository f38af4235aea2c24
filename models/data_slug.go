package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DataSlug is a compact serializable reference to one (model id, field id)
// pair, e.g. "01#02". Slugs are embedded in persisted export templates, so
// the format is load-bearing and must stay bit-for-bit stable.
type DataSlug string

const dataSlugSeparator = "#"

func NewDataSlug(modelId, fieldId int) DataSlug {
	return DataSlug(fmt.Sprintf("%02d%s%02d", modelId, dataSlugSeparator, fieldId))
}

// Split parses the slug back into (model id, field id). The parse is purely
// structural: it does not verify that the referenced model or field exists.
func (s DataSlug) Split() (modelId, fieldId int, err error) {
	parts := strings.Split(string(s), dataSlugSeparator)
	if len(parts) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidDataSlug, "%q", s)
	}
	modelId, err = strconv.Atoi(parts[0])
	if err != nil || modelId < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidDataSlug, "%q", s)
	}
	fieldId, err = strconv.Atoi(parts[1])
	if err != nil || fieldId < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidDataSlug, "%q", s)
	}
	return modelId, fieldId, nil
}

func (s DataSlug) String() string {
	return string(s)
}
