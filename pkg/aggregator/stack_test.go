package aggregator_test

import (
	"testing"
	"time"

	"github.com/corefw/aag/pkg/structs"
	"github.com/stretchr/testify/require"
)

func testGraph() *structs.ResourceGraph {
	return &structs.ResourceGraph{
		FormatVersion: "2010-09-09",
		Resources:     map[string]interface{}{},
	}
}

func TestDeployCreatesMissingStack(t *testing.T) {
	target := &fakeTarget{}

	a := testAggregator(t, nil, nil, target)

	id, accept, err := a.Deploy("orders-api-main", testGraph())
	require.NoError(t, err)
	require.Equal(t, "stack-1", id)
	require.Contains(t, accept, "CREATE_COMPLETE")
	require.Contains(t, accept, "ROLLBACK_COMPLETE")

	require.Equal(t, "orders-api-main", target.createdName)
	require.NotEmpty(t, target.createdBody)
	require.Equal(t, "orders-api", target.createdTags["aag:api"])
	require.Empty(t, target.updatedId)
}

func TestDeployUpdatesExistingStack(t *testing.T) {
	target := &fakeTarget{
		stack: &structs.StackRecord{Id: "stack-7", Name: "orders-api-main", Status: "CREATE_COMPLETE"},
	}

	a := testAggregator(t, nil, nil, target)

	id, accept, err := a.Deploy("orders-api-main", testGraph())
	require.NoError(t, err)
	require.Equal(t, "stack-7", id)
	require.Contains(t, accept, "UPDATE_COMPLETE")
	require.Contains(t, accept, "UPDATE_ROLLBACK_COMPLETE")

	require.Equal(t, "stack-7", target.updatedId)
	require.Empty(t, target.createdName)
}

func TestWaitForStatesReachesAccept(t *testing.T) {
	target := &fakeTarget{
		stack:    &structs.StackRecord{Id: "stack-1", Name: "s"},
		statuses: []string{"UPDATE_IN_PROGRESS", "UPDATE_IN_PROGRESS", "UPDATE_COMPLETE"},
	}

	a := testAggregator(t, nil, nil, target)

	status, err := a.WaitForStates("stack-1", []string{"UPDATE_COMPLETE", "UPDATE_ROLLBACK_COMPLETE"}, time.Millisecond, 10)
	require.NoError(t, err)
	require.Equal(t, "UPDATE_COMPLETE", status)
}

func TestWaitForStatesTimeout(t *testing.T) {
	target := &fakeTarget{
		stack:    &structs.StackRecord{Id: "stack-1", Name: "s"},
		statuses: []string{"CREATE_IN_PROGRESS"},
	}

	a := testAggregator(t, nil, nil, target)

	_, err := a.WaitForStates("stack-1", []string{"CREATE_COMPLETE"}, time.Millisecond, 3)
	require.Error(t, err)
	require.True(t, structs.ErrorTimeout(err))
	require.False(t, structs.ErrorNotFound(err))
}
