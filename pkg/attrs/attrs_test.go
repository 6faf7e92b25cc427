package attrs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	campaignID := uuid.MustParse("7d4c2f7e-8d8a-4b8e-9f61-0f3a8f0b9c11")
	list := []any{"campaign_id", campaignID, "reason", "duplicate", "attempts", 3, "dangling"}

	assert.Equal(t, campaignID.String(), ExtractString(list, "campaign_id"))
	assert.Equal(t, "duplicate", ExtractString(list, "reason"))
	assert.Empty(t, ExtractString(list, "attempts"), "non-string values are ignored")
	assert.Empty(t, ExtractString(list, "dangling"), "keys without a value are ignored")
	assert.Empty(t, ExtractString(nil, "reason"))
}
