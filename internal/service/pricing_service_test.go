package service

import (
	"testing"

	"agent-order-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctReferenceIDs(t *testing.T) {
	entries := []PricingEntryRequest{
		{ProductID: 2, AgentGroupID: 1},
		{ProductID: 2, AgentGroupID: 3},
		{ProductID: 5, AgentGroupID: 1},
	}

	productIDs, groupIDs := distinctReferenceIDs(entries)
	assert.Equal(t, []int64{2, 5}, productIDs)
	assert.Equal(t, []int64{1, 3}, groupIDs)
}

func TestMissingIDs(t *testing.T) {
	missing := missingIDs([]int64{1, 2, 3, 4}, []int64{2, 4})
	assert.Equal(t, []int64{1, 3}, missing)

	assert.Nil(t, missingIDs([]int64{1, 2}, []int64{1, 2}))
	assert.Equal(t, []int64{7}, missingIDs([]int64{7}, nil))
}

func TestRequestPairsAndOverrides(t *testing.T) {
	entries := []PricingEntryRequest{
		{ProductID: 1, AgentGroupID: 2, Price: dec("10.5")},
		{ProductID: 3, AgentGroupID: 4, Price: dec("99")},
	}

	pairs := requestPairs(entries)
	require.Len(t, pairs, 2)
	assert.Equal(t, models.PricingPair{ProductID: 1, AgentGroupID: 2}, pairs[0])
	assert.Equal(t, models.PricingPair{ProductID: 3, AgentGroupID: 4}, pairs[1])

	overrides := requestOverrides(entries)
	require.Len(t, overrides, 2)
	assert.Equal(t, int64(3), overrides[1].ProductID)
	assert.True(t, overrides[1].Price.Equal(dec("99")))
}
